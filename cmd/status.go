package cmd

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Rorical/MediBot/internal/api"
	"github.com/Rorical/MediBot/internal/core"
	"github.com/Rorical/MediBot/internal/logging"
	"github.com/Rorical/MediBot/internal/models"
	"github.com/Rorical/MediBot/ui/components"
)

var statusTimeout time.Duration

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the backend is online",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logging.SetupConsole(cfg.LogLevel, os.Stderr)

		ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
		defer cancel()

		backend := api.NewClient(cfg.BaseURL(), nil)
		surface := components.NewConsoleSurface(os.Stdout, nil, backend.BaseURL(), true)
		client := core.NewChatClient(backend, surface)

		if client.Probe(ctx) != models.Online {
			return errors.New("backend is offline")
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 10*time.Second, "give up on the health check after this long")
	rootCmd.AddCommand(statusCmd)
}
