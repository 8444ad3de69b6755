package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	wodruntime "github.com/SergeiGolos/wod-wiki-runtime/internal/runtime"
)

func newRunCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Run a compiled workout script headless, printing display changes",
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
			printDisplay(rt.Display())

			fmt.Println(gray("Type an event name (tick, next, reps:update, pause, resume) or 'quit'."))
			scanner := bufio.NewScanner(os.Stdin)
			for !rt.IsComplete() && scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "quit" || line == "exit" {
					break
				}
				if err := rt.Handle(line, nil); err != nil {
					fmt.Println(redErr(err))
				}
				printDisplay(rt.Display())
			}

			for _, e := range rt.Errors() {
				fmt.Println(redErr(e))
			}
			return nil
		},
	}
}

func printDisplay(items []wodruntime.DisplayItem) {
	fmt.Println(blue("--- stack ---"))
	for i, item := range items {
		fmt.Printf("%s%s\n", strings.Repeat("  ", i), green(item.Label))
	}
}

func redErr(err error) string {
	return fmt.Sprintf("%s %v", red("error:"), err)
}
