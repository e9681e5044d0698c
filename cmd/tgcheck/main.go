package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tgcheck/internal/app"
	"tgcheck/internal/check"
	"tgcheck/internal/config"
	"tgcheck/internal/encryption"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, creating it with defaults on first use.
func loadConfig() (*app.Defaults, *config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.LoadOrInit(defaults.ConfigPath, defaults.BaseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	return defaults, cfg, nil
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "run", "history").
func newApp(ctx context.Context, cmd *cobra.Command, operation string) (*app.App, *config.Config, error) {
	_, cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	opts := app.Options{Operation: operation, Passphrase: passphrasePrompt(cfg)}
	if !quiet {
		opts.Console = os.Stderr
	}

	a, err := app.NewApp(ctx, cfg, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, cfg, nil
}

// passphrasePrompt reads the proxy list passphrase from the terminal without
// echo. It returns nil when stdin is not a terminal.
func passphrasePrompt(cfg *config.Config) encryption.PassphraseFunc {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return func() (string, error) {
		fmt.Fprint(os.Stderr, newPrinter(cfg.Language).Sprintf(msgPassphrase))
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

var rootCmd = &cobra.Command{
	Use:          "tgcheck",
	Short:        "Check Telegram session files and quarantine dead ones",
	SilenceUsage: true,
}

// run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Check every session once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, cfg, err := newApp(ctx, cmd, "run")
		if err != nil {
			return err
		}
		defer a.Close()

		p := newPrinter(cfg.Language)
		out := cmd.OutOrStdout()

		if a.ProxyFileCreated {
			warnColor.Fprintln(out, p.Sprintf(msgProxyFileCreated, cfg.Proxies.File))
			return nil
		}

		infoColor.Fprintln(out, p.Sprintf(msgStarting))
		report, err := a.Run(ctx)
		switch {
		case errors.Is(err, check.ErrRunInProgress):
			warnColor.Fprintln(out, p.Sprintf(msgAlreadyRunning))
			return err
		case errors.Is(err, check.ErrNoProxies):
			errColor.Fprintln(out, p.Sprintf(msgNoProxies, cfg.Proxies.File))
			return err
		case errors.Is(err, check.ErrNoCandidates):
			errColor.Fprintln(out, p.Sprintf(msgNoSessions, cfg.Sessions.Dir))
			return err
		case err != nil:
			return err
		}

		printReport(out, p, report)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, cfg, err := newApp(cmd.Context(), cmd, "history")
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		printHistory(cmd.OutOrStdout(), newPrinter(cfg.Language), runs)
		return nil
	},
}

// proxies command
var proxiesCmd = &cobra.Command{
	Use:   "proxies",
	Short: "Inspect and protect the proxy list",
}

var proxiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Parse the proxy list and show the usable entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cfg, err := newApp(cmd.Context(), cmd, "proxies list")
		if err != nil {
			return err
		}
		defer a.Close()

		proxies, err := a.Proxies()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, newPrinter(cfg.Language).Sprintf(msgProxyCount, len(proxies), cfg.Proxies.File))
		for _, p := range proxies {
			fmt.Fprintf(out, "  %s\n", p)
		}
		return nil
	},
}

var proxiesKeygenCmd = &cobra.Command{
	Use:   "keygen PATH",
	Short: "Create an age identity for encrypting the proxy list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		recipient, err := encryption.GenerateIdentity(args[0])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), newPrinter(cfg.Language).Sprintf(msgKeyCreated, args[0], recipient))
		return nil
	},
}

var proxiesEncryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt the plaintext proxy list with age",
	RunE: func(cmd *cobra.Command, args []string) error {
		recipient, _ := cmd.Flags().GetString("recipient")

		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var passphrase string
		if recipient == "" {
			prompt := passphrasePrompt(cfg)
			if prompt == nil {
				return fmt.Errorf("--recipient is required when stdin is not a terminal")
			}
			if passphrase, err = prompt(); err != nil {
				return fmt.Errorf("reading passphrase: %w", err)
			}
		}

		dest, err := app.EncryptProxyFile(cfg.Proxies.File, recipient, passphrase)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), newPrinter(cfg.Language).Sprintf(msgEncrypted, dest))
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults.BaseDir)
		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		if _, err := app.Bootstrap(cfg); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), newPrinter(cfg.Language).Sprintf(msgConfigCreated, defaults.ConfigPath))
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Fprintf(out, "Language:     %s\n", cfg.Language)
		fmt.Fprintf(out, "Max Threads:  %d\n", cfg.MaxThreads)
		fmt.Fprintf(out, "Base Dir:     %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "Log Dir:      %s\n", cfg.LogDir)
		fmt.Fprintf(out, "Sessions Dir: %s\n", cfg.Sessions.Dir)
		fmt.Fprintf(out, "Platform:     %s\n", cfg.Sessions.Platform)
		fmt.Fprintf(out, "Proxy List:   %s\n", cfg.Proxies.File)
		switch cfg.Quarantine.Type {
		case "s3":
			fmt.Fprintf(out, "Quarantine:   s3://%s/%s\n", cfg.Quarantine.S3Bucket, cfg.Quarantine.S3Prefix)
		default:
			fmt.Fprintf(out, "Quarantine:   %s\n", cfg.Quarantine.Dir)
		}
		fmt.Fprintf(out, "History:      %s\n", cfg.Database.Type)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change language or max_threads",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(defaults.ConfigPath, cfg); err != nil {
			return err
		}

		value := args[1]
		if args[0] == "max_threads" {
			value = fmt.Sprint(cfg.MaxThreads)
		}
		fmt.Fprintln(cmd.OutOrStdout(), newPrinter(cfg.Language).Sprintf(msgConfigUpdated, args[0], value))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Write log lines to the log file only")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configSetCmd)

	// proxies subcommands
	proxiesCmd.AddCommand(proxiesListCmd)
	proxiesCmd.AddCommand(proxiesKeygenCmd)
	proxiesCmd.AddCommand(proxiesEncryptCmd)
	proxiesEncryptCmd.Flags().String("recipient", "", "age recipient (age1...); prompts for a passphrase when empty")

	// root commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")
	rootCmd.AddCommand(proxiesCmd)
	rootCmd.AddCommand(configCmd)
}
