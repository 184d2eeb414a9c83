package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jesspatton/lazyremote/api"
	"github.com/jesspatton/lazyremote/config"
	"github.com/jesspatton/lazyremote/engine"
	"github.com/jesspatton/lazyremote/report"
)

// headlessConfig loads the config for a non-interactive command and sends
// logs to stderr.
func headlessConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if _, err := setupLogging(cfg, false); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the server's test catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := headlessConfig(cmd)
			if err != nil {
				return err
			}
			client, err := api.NewClient(cfg.Server, cfg.RequestTimeout)
			if err != nil {
				return err
			}
			catalog, err := client.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			return report.Catalog(cmd.OutOrStdout(), catalog, report.Options{Color: useColor(os.Stdout)})
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the server's current run status and results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := headlessConfig(cmd)
			if err != nil {
				return err
			}
			client, err := api.NewClient(cfg.Server, cfg.RequestTimeout)
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := report.Status(out, status); err != nil {
				return err
			}
			if len(status.Results) == 0 {
				return nil
			}
			return report.Results(out, status.Results, report.Options{Color: useColor(os.Stdout)})
		},
	}
}

func newRunCmd() *cobra.Command {
	var yes bool

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run tests on the server and wait for the results",
	}
	runCmd.PersistentFlags().BoolVarP(&yes, "yes", "y", false,
		"Skip the confirmation prompt for suite and full runs")

	runWith := func(kind engine.DispatchKind) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := headlessConfig(cmd)
			if err != nil {
				return err
			}

			target := runTarget{Kind: kind}
			if len(args) > 0 {
				target.Target = args[0]
			}
			summary, err := runHeadless(cmd.Context(), cfg, target, runOptions{
				Yes:   yes,
				Color: useColor(os.Stdout),
				In:    cmd.InOrStdin(),
				Out:   cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			if summary.Failing() {
				return &testFailureError{Summary: summary}
			}
			return nil
		}
	}

	runCmd.AddCommand(&cobra.Command{
		Use:   "test <method>",
		Short: "Run a single test by its method name",
		Args:  cobra.ExactArgs(1),
		RunE:  runWith(engine.DispatchTest),
	})
	runCmd.AddCommand(&cobra.Command{
		Use:   "suite <name>",
		Short: "Run every test in a suite",
		Args:  cobra.ExactArgs(1),
		RunE:  runWith(engine.DispatchSuite),
	})
	runCmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Run the whole catalog",
		Args:  cobra.NoArgs,
		RunE:  runWith(engine.DispatchAll),
	})
	return runCmd
}

func newInitCmd() *cobra.Command {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
			}

			cfg := config.DefaultConfig()
			if cmd.Flags().Changed("server") {
				cfg.Server = serverFlag
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return initCmd
}
