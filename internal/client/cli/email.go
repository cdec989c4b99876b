package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *Cli) verifyEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-email [TOKEN]",
		Short: "Verify the email with the token from the verification email",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := c.argOrPrompt(args, "Verification token: ")
			if err != nil {
				return err
			}
			msg, err := c.sessions.VerifyEmail(cmd.Context(), token)
			if err != nil {
				return err
			}
			c.io.Printf("✓ %s\n", msg)
			return nil
		},
	}
}

func (c *Cli) resendVerificationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resend-verification [EMAIL]",
		Short: "Send the verification email again",
		Long:  "Send the verification email again. Without EMAIL the email of the stored session is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := c.sessions.ResendVerification(cmd.Context(), firstArg(args))
			if err != nil {
				return err
			}
			c.io.Println(msg)
			return nil
		},
	}
}

func (c *Cli) forgotPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password [EMAIL]",
		Short: "Request a password reset email",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := c.argOrPrompt(args, "Email: ")
			if err != nil {
				return err
			}
			msg, err := c.sessions.ForgotPassword(cmd.Context(), email)
			if err != nil {
				return err
			}
			c.io.Println(msg)
			return nil
		},
	}
}

func (c *Cli) resetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password [TOKEN]",
		Short: "Set a new password with the token from the reset email",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := c.argOrPrompt(args, "Reset token: ")
			if err != nil {
				return err
			}
			password, err := c.readPassword("New password: ")
			if err != nil {
				return err
			}
			msg, err := c.sessions.ResetPassword(cmd.Context(), token, password)
			if err != nil {
				return fmt.Errorf("password reset failed: %w", err)
			}
			c.io.Printf("✓ %s\n", msg)
			c.io.Println("Run 'facial login' with the new password.")
			return nil
		},
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
