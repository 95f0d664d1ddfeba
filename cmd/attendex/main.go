package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/attendex/internal/config"
	"github.com/kailas-cloud/attendex/internal/version"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "attendex",
		Short:         "Face-recognition attendance service",
		Version:       fmt.Sprintf("%s (%s)", version.Version, version.Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newSweepCommand())

	return cmd
}

// loadConfig reads the environment-selected YAML config.
func loadConfig() (config.Config, string, error) {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, env, fmt.Errorf("load config: %w", err)
	}
	return cfg, env, nil
}
