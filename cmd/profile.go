package cmd

import (
	"fmt"
	"net/url"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Rorical/MediBot/internal/config"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage backend profiles",
	Long:  `Manage the MediBot backends the chat can connect to.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Active Profile: %s\n\n", cfg.ActiveProfile)
		fmt.Println("Available Profiles:")
		for _, name := range cfg.ProfileNames() {
			profile := cfg.Profiles[name]
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Printf("  %s%s\n", name, marker)
			fmt.Printf("    Base URL: %s\n", profile.BaseURL)
			if profile.Description != "" {
				fmt.Printf("    Description: %s\n", profile.Description)
			}
			fmt.Println()
		}
		return nil
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		profile, exists := cfg.Profiles[args[0]]
		if !exists {
			return errors.Wrapf(config.ErrProfileNotFound, "profile '%s'", args[0])
		}

		fmt.Printf("Profile: %s\n", args[0])
		fmt.Printf("Base URL: %s\n", profile.BaseURL)
		fmt.Printf("Description: %s\n", profile.Description)
		return nil
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var profileName string
		if len(args) > 0 {
			profileName = args[0]
		} else {
			prompt := promptui.Prompt{Label: "Profile name"}
			if profileName, err = prompt.Run(); err != nil {
				return errors.Wrap(err, "prompt failed")
			}
		}

		profile, err := promptProfile(config.Profile{BaseURL: config.DefaultBaseURL})
		if err != nil {
			return err
		}
		if err := cfg.AddProfile(profileName, profile); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return errors.Wrap(err, "failed to save config")
		}

		fmt.Printf("Profile '%s' added successfully!\n", profileName)
		return nil
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		profileName, err := profileArg(cfg, args, "Select profile to edit", false)
		if err != nil {
			return err
		}
		current, exists := cfg.Profiles[profileName]
		if !exists {
			return errors.Wrapf(config.ErrProfileNotFound, "profile '%s'", profileName)
		}

		profile, err := promptProfile(current)
		if err != nil {
			return err
		}
		if err := cfg.UpdateProfile(profileName, profile); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return errors.Wrap(err, "failed to save config")
		}

		fmt.Printf("Profile '%s' updated successfully!\n", profileName)
		return nil
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete [profile-name]",
	Short: "Delete a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		profileName, err := profileArg(cfg, args, "Select profile to delete", false)
		if err != nil {
			return err
		}

		confirmPrompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete profile '%s'", profileName),
			IsConfirm: true,
		}
		if _, err := confirmPrompt.Run(); err != nil {
			fmt.Println("Deletion cancelled")
			return nil
		}

		if err := cfg.DeleteProfile(profileName); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return errors.Wrap(err, "failed to save config")
		}

		fmt.Printf("Profile '%s' deleted successfully! Active profile: %s\n", profileName, cfg.ActiveProfile)
		return nil
	},
}

var switchProfileCmd = &cobra.Command{
	Use:   "switch [profile-name]",
	Short: "Switch to a different profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		profileName, err := profileArg(cfg, args, "Select profile to switch to", true)
		if err != nil {
			return err
		}
		if profileName == "" {
			fmt.Println("No other profiles available to switch to")
			return nil
		}

		if err := cfg.SwitchProfile(profileName); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return errors.Wrap(err, "failed to save config")
		}

		fmt.Printf("Switched to profile '%s'\n", profileName)
		return nil
	},
}

// profileArg takes the profile name from args or lets the user pick one.
// It returns "" when there is nothing to pick from.
func profileArg(cfg *config.Config, args []string, label string, skipActive bool) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	names := make([]string, 0, len(cfg.Profiles))
	for _, name := range cfg.ProfileNames() {
		if skipActive && name == cfg.ActiveProfile {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "", nil
	}

	prompt := promptui.Select{Label: label, Items: names}
	_, name, err := prompt.Run()
	if err != nil {
		return "", errors.Wrap(err, "selection failed")
	}
	return name, nil
}

func promptProfile(current config.Profile) (config.Profile, error) {
	baseURLPrompt := promptui.Prompt{
		Label:    "Base URL",
		Default:  current.BaseURL,
		Validate: validateBaseURL,
	}
	baseURL, err := baseURLPrompt.Run()
	if err != nil {
		return current, errors.Wrap(err, "prompt failed")
	}

	descPrompt := promptui.Prompt{
		Label:   "Description (optional)",
		Default: current.Description,
	}
	desc, err := descPrompt.Run()
	if err != nil {
		return current, errors.Wrap(err, "prompt failed")
	}

	return config.Profile{BaseURL: baseURL, Description: desc}, nil
}

func validateBaseURL(input string) error {
	u, err := url.Parse(input)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("enter an http(s) URL such as http://localhost:5000")
	}
	return nil
}

func init() {
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(deleteProfileCmd)
	profileCmd.AddCommand(switchProfileCmd)
}
