package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Rorical/MediBot/internal/app"
	"github.com/Rorical/MediBot/internal/config"
	"github.com/Rorical/MediBot/internal/logging"
)

var (
	serverURL string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "medibot",
	Short: "Terminal chat with a medical assistant",
	Long: `MediBot forwards your questions to a medical assistant backend and shows
its answers, together with how many knowledge base sources backed them.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runChat(cfg)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// runChat starts the terminal page. Logs go to a file since the page owns
// the terminal.
func runChat(cfg *config.Config) error {
	dir, err := config.Dir()
	if err != nil {
		return errors.Wrap(err, "failed to locate config directory")
	}
	closer, err := logging.SetupFile(cfg.LogLevel, filepath.Join(dir, "medibot.log"))
	if err != nil {
		return err
	}
	defer closer.Close()

	application := app.NewApplication(cfg)
	defer application.Stop()

	if err := application.Start(); err != nil {
		log.Error().Err(err).Msg("chat page exited with error")
		return errors.Wrap(err, "application error")
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "backend base URL, overrides the active profile")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(profileCmd)
}
