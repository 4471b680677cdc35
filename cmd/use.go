package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var useCmd = &cobra.Command{
	Use:   "use [profile-name]",
	Short: "Switch to a profile and start the chat",
	Long:  `Switch to the specified profile and immediately start the chat page.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := cfg.SwitchProfile(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return errors.Wrap(err, "failed to save config")
		}

		return runChat(cfg)
	},
}

func init() {
	rootCmd.AddCommand(useCmd)
}
