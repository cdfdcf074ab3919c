package cmd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoCodeAlone/locator"
	"github.com/GoCodeAlone/locator/config"
	"github.com/GoCodeAlone/locator/internal/toggle"
	"github.com/GoCodeAlone/locator/metrics"
)

// Version information
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// PrintVersion prints version information
func PrintVersion() string {
	return fmt.Sprintf("locator v%s (commit: %s, built on: %s)", Version, Commit, Date)
}

// app is the state shared by subcommands once the root command has run its
// pre-run hook.
type app struct {
	configPath string

	cfg      *config.Config
	zap      *zap.Logger
	logger   locator.Logger
	locator  *locator.Locator
	registry *prometheus.Registry
}

// NewRootCommand creates the root command for the locator CLI
func NewRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "locator",
		Short: "Locator - inspect and exercise a type-aware service registry",
		Long: `Locator bootstraps a service registry from configuration and runs
sample consumers against it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.bootstrap()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.zap != nil {
				_ = a.zap.Sync()
			}
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML or TOML config file")

	cmd.AddCommand(newToggleCommand(a))
	cmd.AddCommand(newNamesCommand(a))
	cmd.AddCommand(newServeCommand(a))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func (a *app) bootstrap() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.zap, err = newZapLogger(cfg.Log)
	if err != nil {
		return err
	}
	a.logger = &zapLogger{sugar: a.zap.Sugar()}

	a.locator = locator.New(
		locator.WithLogger(a.logger),
		locator.WithEventSource(cfg.EventSource),
		locator.WithObserver(locator.NewLoggingObserver(a.logger)),
	)

	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		obs, err := metrics.NewObserver(metrics.WithRegistry(a.registry), metrics.WithNamespace(cfg.Metrics.Namespace))
		if err != nil {
			return fmt.Errorf("failed to create metrics observer: %w", err)
		}
		if err := a.locator.RegisterObserver(obs); err != nil {
			return err
		}
	}

	if err := toggle.Bootstrap(a.locator, cfg.Toggle.ServiceName); err != nil {
		return fmt.Errorf("failed to register toggle service: %w", err)
	}

	a.logger.Debug("Locator bootstrapped", "services", a.locator.Len(), "config", a.configPath)
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), PrintVersion())
		},
	}
}
