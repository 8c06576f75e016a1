package cmd

import (
	"fmt"
	"os"

	"go-do-list/backend/internal/config"
	"go-do-list/backend/internal/logging"

	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	configFile string
	cfg        *config.Config
	appLog     *logging.SlogLogger
)

var rootCmd = &cobra.Command{
	Use:     "godolist",
	Short:   "Task, folder and document backend for Go Do List",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			if err := os.Setenv("CONFIG_FILE", configFile); err != nil {
				return err
			}
		}

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		appLog = logging.New(cmd.ErrOrStderr(), cfg.Server.LogLevel, cfg.IsProduction())
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (overrides CONFIG_FILE)")
}

func Execute() error {
	return rootCmd.Execute()
}
