package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	wodruntime "github.com/SergeiGolos/wod-wiki-runtime/internal/runtime"
)

var (
	tuiHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C3AED")).
			Bold(true).
			Padding(0, 1)

	tuiBlockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	tuiDoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true)

	tuiHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

type tuiTickMsg time.Time

type tuiModel struct {
	rt     *wodruntime.ScriptRuntime
	width  int
	height int
	err    error
}

func newTUIModel(rt *wodruntime.ScriptRuntime) tuiModel {
	return tuiModel{rt: rt}
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func tuiTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return tuiTickMsg(t) })
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "n":
			if err := m.rt.Handle("next", nil); err != nil {
				m.err = err
			}
		case " ":
			if err := m.rt.Handle("pause", nil); err != nil {
				m.err = err
			}
		case "r":
			if err := m.rt.Handle("resume", nil); err != nil {
				m.err = err
			}
		}

	case tuiTickMsg:
		if err := m.rt.Handle("tick", nil); err != nil {
			m.err = err
		}
		if m.rt.IsComplete() {
			return m, tea.Quit
		}
		return m, tuiTick()
	}
	return m, nil
}

func (m tuiModel) View() string {
	var b strings.Builder
	b.WriteString(tuiHeaderStyle.Render("wodctl live") + "\n\n")

	for i, item := range m.rt.Display() {
		indent := strings.Repeat("  ", i)
		b.WriteString(indent + tuiBlockStyle.Render(item.Label) + "\n")
	}

	if m.rt.IsComplete() {
		b.WriteString("\n" + tuiDoneStyle.Render("complete") + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + fmt.Sprintf("error: %v", m.err) + "\n")
	}

	b.WriteString("\n" + tuiHelpStyle.Render("n: next   space: pause   r: resume   q: quit"))
	return b.String()
}

func newTUICommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui <script.yaml>",
		Short: "Watch a compiled workout script live in a terminal UI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := loadScript(args[0])
			if err != nil {
				return err
			}
			rt, err := buildRuntime(flags, script)
			if err != nil {
				return err
			}
			if err := rt.Start(); err != nil {
				return fmt.Errorf("start: %w", err)
			}

			p := tea.NewProgram(newTUIModel(rt), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}
