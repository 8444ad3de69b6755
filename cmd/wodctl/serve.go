package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/bridge"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/obslog"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var addr string
	var tick time.Duration

	cmd := &cobra.Command{
		Use:   "serve <script.yaml>",
		Short: "Serve a compiled workout script over a WebSocket bridge",
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

			logger := slog.New(obslog.NewTextHandler(os.Stderr, "BRIDGE", slog.LevelInfo)).With("component", "Bridge")

			stop := make(chan struct{})
			if tick > 0 {
				go bridge.TickLoop(rt, tick, stop, logger)
			}

			srv := bridge.NewServer(rt, addr, logger)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigCh
				close(stop)
				_ = srv.Stop()
			}()

			fmt.Printf("%s %s (ws://%s/ws)\n", green("serving"), args[0], addr)
			return srv.Start()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8089", "Address to listen on")
	cmd.Flags().DurationVar(&tick, "tick", 250*time.Millisecond, "Tick interval fed to the runtime (0 disables)")
	return cmd
}
