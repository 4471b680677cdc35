package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Rorical/MediBot/internal/api"
	"github.com/Rorical/MediBot/internal/core"
	"github.com/Rorical/MediBot/internal/logging"
	"github.com/Rorical/MediBot/ui/components"
)

var askVerbose bool

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logging.SetupConsole(cfg.LogLevel, os.Stderr)

		renderer, err := components.NewMessageRenderer(outputStyle(), 0)
		if err != nil {
			return errors.Wrap(err, "failed to create renderer")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		backend := api.NewClient(cfg.BaseURL(), nil)
		surface := components.NewConsoleSurface(os.Stdout, renderer, backend.BaseURL(), askVerbose)
		client := core.NewChatClient(backend, surface)

		turn := client.Send(ctx, strings.Join(args, " "))
		if turn == nil {
			return errors.New("question is empty")
		}
		if res := turn.Wait(); res.Outcome != api.Succeeded {
			return errors.Errorf("chat turn %s", res.Outcome)
		}
		return nil
	},
}

// outputStyle picks styled markdown for terminals and plain text for pipes.
func outputStyle() string {
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return "dark"
	}
	return "notty"
}

func init() {
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "also print speech bubble and typing lines")
	rootCmd.AddCommand(askCmd)
}
