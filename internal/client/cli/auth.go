package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (c *Cli) registerCmd() *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.io.Println("=== Registration ===")
			c.io.Println()

			var err error
			if email == "" {
				if email, err = c.io.ReadInput("Email: "); err != nil {
					return fmt.Errorf("failed to read email: %w", err)
				}
			}
			if name == "" {
				if name, err = c.io.ReadInput("Name: "); err != nil {
					return fmt.Errorf("failed to read name: %w", err)
				}
			}
			password, err := c.readPassword("Password: ")
			if err != nil {
				return err
			}

			s, msg, err := c.sessions.Register(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}

			c.io.Println()
			c.io.Println("✓ Registration successful!")
			c.io.Printf("User ID: %s\n", s.UserID)
			c.io.Printf("Email:   %s\n", s.Email)
			if msg != "" {
				c.io.Println(msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	return cmd
}

func (c *Cli) loginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email == "" {
				if email, err = c.io.ReadInput("Email: "); err != nil {
					return fmt.Errorf("failed to read email: %w", err)
				}
			}
			password, err := c.readPassword("Password: ")
			if err != nil {
				return err
			}

			s, err := c.sessions.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			c.io.Println("✓ Login successful!")
			c.io.Printf("Logged in as %s (%s)\n", s.Name, s.Email)
			if !s.EmailVerified {
				c.io.Println("⚠️  Email is not verified yet.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	return cmd
}

func (c *Cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke all sessions and forget the local one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			c.io.Println("✓ Logged out successfully")
			return nil
		},
	}
}

func (c *Cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.sessions.Status(cmd.Context())
			if err != nil {
				c.io.Println("Status: Not authenticated")
				c.io.Println("Run 'facial login' to authenticate.")
				return nil
			}
			return render(c.io, statusTemplate, statusView{Session: s, Remaining: time.Until(s.AccessExpiresAt).Round(time.Second)})
		},
	}
}

func (c *Cli) refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new token pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.sessions.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			c.io.Printf("✓ Tokens refreshed, access token expires at %s\n", s.AccessExpiresAt.Local().Format(time.RFC3339))
			return nil
		},
	}
}

func (c *Cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			health, err := c.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			c.io.Printf("Server:   %s\n", health.Status)
			c.io.Printf("Database: %s\n", health.Database)
			if health.Version != "" {
				c.io.Printf("Version:  %s\n", health.Version)
			}
			return nil
		},
	}
}
