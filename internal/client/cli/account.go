package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/facialanalyzer/internal/models"
)

func (c *Cli) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := c.sessions.Me(cmd.Context())
			if err != nil {
				return err
			}
			return render(c.io, userTemplate, user)
		},
	}
}

func (c *Cli) profileCmd() *cobra.Command {
	var (
		name     string
		age      int
		gender   string
		skinType string
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update name and skin profile",
		Long: `Update the display name and/or the profile used for skin analysis.
Only the flags that are passed are sent. Profile fields replace the stored profile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()

			var namePtr *string
			if flags.Changed("name") {
				namePtr = &name
			}

			var profile *models.Profile
			if flags.Changed("age") || flags.Changed("gender") || flags.Changed("skin-type") {
				profile = &models.Profile{Gender: gender, SkinType: skinType}
				if flags.Changed("age") {
					profile.Age = &age
				}
			}

			user, err := c.sessions.UpdateProfile(cmd.Context(), namePtr, profile)
			if err != nil {
				return err
			}

			c.io.Println("✓ Profile updated")
			return render(c.io, userTemplate, user)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().IntVar(&age, "age", 0, "Age")
	cmd.Flags().StringVar(&gender, "gender", "", "Gender: male, female, other")
	cmd.Flags().StringVar(&skinType, "skin-type", "", "Skin type: normal, dry, oily, combination, sensitive")
	return cmd
}

func (c *Cli) changePasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "change-password",
		Short: "Change the account password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := c.readPassword("Current password: ")
			if err != nil {
				return err
			}
			next, err := c.promptPassword("New password: ")
			if err != nil {
				return err
			}
			confirm, err := c.promptPassword("Repeat new password: ")
			if err != nil {
				return err
			}
			if next != confirm {
				return fmt.Errorf("passwords do not match")
			}

			msg, err := c.sessions.ChangePassword(cmd.Context(), current, next)
			if err != nil {
				return err
			}
			c.io.Printf("✓ %s\n", msg)
			return nil
		},
	}
}

func (c *Cli) deleteAccountCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-account",
		Short: "Permanently delete the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				answer, err := c.io.ReadInput("Type 'delete' to confirm: ")
				if err != nil {
					return fmt.Errorf("failed to read confirmation: %w", err)
				}
				if answer != "delete" {
					c.io.Println("Cancelled")
					return nil
				}
			}

			msg, err := c.sessions.DeleteAccount(cmd.Context())
			if err != nil {
				return err
			}
			c.io.Printf("✓ %s\n", msg)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
