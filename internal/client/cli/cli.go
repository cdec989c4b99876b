// Package cli реализует команды клиента Facial Analyzer на cobra.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/facialanalyzer/internal/client/api"
	"github.com/iudanet/facialanalyzer/internal/client/iocli"
	"github.com/iudanet/facialanalyzer/internal/client/session"
	"github.com/iudanet/facialanalyzer/internal/client/storage/boltdb"
	"github.com/iudanet/facialanalyzer/internal/logging"
)

// PasswordEnv - переменная окружения с паролем для неинтерактивного запуска
const PasswordEnv = "FACIAL_PASSWORD"

// Options задает глобальные флаги клиента
type Options struct {
	ServerURL    string
	DBPath       string
	PasswordFile string
	Password     string
	LogLevel     string
}

// Cli хранит зависимости, открытые на время выполнения одной команды
type Cli struct {
	io        iocli.IO
	apiClient *api.Client
	sessions  *session.Service
	store    *boltdb.Storage
	opts     Options
	version  string
}

// NewRootCmd создает корневую команду клиента
func NewRootCmd(io iocli.IO, version string) *cobra.Command {
	c := &Cli{io: io, version: version}

	cmd := &cobra.Command{
		Use:           "facial",
		Short:         "Facial Analyzer account client",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd.Context())
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.opts.ServerURL, "server", "http://localhost:5000", "Server URL")
	flags.StringVar(&c.opts.DBPath, "db", "facial-client.db", "Path to local session database")
	flags.StringVar(&c.opts.PasswordFile, "password-file", "", "Path to file containing the password")
	flags.StringVar(&c.opts.Password, "password", "", "Password (not recommended, use "+PasswordEnv+" or --password-file)")
	flags.StringVar(&c.opts.LogLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	cmd.AddCommand(
		c.registerCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.statusCmd(),
		c.refreshCmd(),
		c.meCmd(),
		c.profileCmd(),
		c.changePasswordCmd(),
		c.deleteAccountCmd(),
		c.verifyEmailCmd(),
		c.resendVerificationCmd(),
		c.forgotPasswordCmd(),
		c.resetPasswordCmd(),
		c.healthCmd(),
	)

	// PersistentPostRun не вызывается при ошибке, а BoltDB держит блокировку файла
	for _, sub := range cmd.Commands() {
		if sub.RunE == nil {
			continue
		}
		run := sub.RunE
		sub.RunE = func(cmd *cobra.Command, args []string) error {
			return errors.Join(run(cmd, args), c.close())
		}
	}

	return cmd
}

func (c *Cli) open(ctx context.Context) error {
	if c.sessions != nil {
		return nil
	}

	logger := logging.Setup("facialanalyzer-client", c.version, "text", c.opts.LogLevel, os.Stderr)

	store, err := boltdb.New(ctx, c.opts.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open local storage: %w", err)
	}

	c.store = store
	c.apiClient = api.NewClient(c.opts.ServerURL)
	c.sessions = session.NewService(c.apiClient, store, c.opts.ServerURL, logger)
	return nil
}

func (c *Cli) client() *api.Client {
	return c.apiClient
}

func (c *Cli) close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	c.sessions = nil
	return err
}

// readPassword reads a password from various sources with priority:
// 1. Environment variable FACIAL_PASSWORD
// 2. File specified in --password-file
// 3. Command-line parameter --password
// 4. Interactive prompt (fallback)
func (c *Cli) readPassword(prompt string) (string, error) {
	// Priority 1: Environment variable
	if envPassword := os.Getenv(PasswordEnv); envPassword != "" {
		return envPassword, nil
	}

	// Priority 2: File
	if c.opts.PasswordFile != "" {
		content, err := os.ReadFile(c.opts.PasswordFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline/whitespace
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", fmt.Errorf("password file is empty")
		}
		return password, nil
	}

	// Priority 3: CLI parameter
	if c.opts.Password != "" {
		return c.opts.Password, nil
	}

	// Priority 4: Interactive prompt (fallback)
	return c.promptPassword(prompt)
}

// promptPassword всегда спрашивает интерактивно (второй пароль в change-password)
func (c *Cli) promptPassword(prompt string) (string, error) {
	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

// argOrPrompt берет значение из аргумента команды или спрашивает его
func (c *Cli) argOrPrompt(args []string, prompt string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	value, err := c.io.ReadInput(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return value, nil
}
