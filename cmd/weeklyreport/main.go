package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"weeklyreport/internal/config"
	"weeklyreport/internal/infrastructure"
	"weeklyreport/pkg/contracts"
)

// cli carries the state shared by every subcommand.
type cli struct {
	configFile string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "weeklyreport",
		Short: contracts.AppName,
		Long: `weeklyreport turns the weekly Top 100 seller spreadsheets into the
WoW highlights document and flags report workbooks against the OHL
merchant list.

Configuration is read from WEEKLY_CONFIG (or configs/config.yaml) and
WEEKLY_* environment variables, the same way the web server does.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newReportCmd(c),
		newFlagBrandsCmd(c),
		newVersionCmd(),
	)
	return root
}

// init loads configuration and builds a logger on stderr so stdout stays
// reserved for command output.
func (c *cli) init(cmd *cobra.Command) error {
	var err error
	if c.configFile != "" {
		c.cfg, err = config.LoadFile(c.configFile)
	} else {
		c.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	c.logger = infrastructure.WithComponent(infrastructure.NewLogger(cmd.ErrOrStderr(), c.logLevel), "cli")
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// version needs no configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
		},
	}
}
