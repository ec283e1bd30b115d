package main

import (
	"github.com/jrsteele09/moto-session/internal/config"
	"github.com/jrsteele09/moto-session/internal/logging"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "moto-session",
		Short:         "Session gateway between the moto web app and its backends",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file, environment variables take precedence")

	loadConfig := func() (config.Config, error) {
		c, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		logging.Setup(c.GetEnv(), c.GetLogLevel())
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return c, nil
	}

	rootCmd.AddCommand(
		newServeCommand(loadConfig),
		newLoginCommand(loadConfig),
	)

	return rootCmd
}
