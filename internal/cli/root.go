// Package cli implements the foodcatalog command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/config"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/pkg/logger"
)

// app is shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	envFile string
	cfg     *config.Config
	logger  *slog.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "foodcatalog",
		Short: "Browse and manage a remote food catalog",
		Long: `foodcatalog lists, searches, adds, edits and deletes meals held by a
remote food store, and can serve the same operations as a JSON HTTP gateway.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (yaml or json)")
	flags.StringVar(&a.envFile, "env-file", "", "env file to load (default .env when present)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("store-url", "", "base URL of the remote food store")
	flags.String("cache", "", "query cache driver (memory or redis)")
	bindFlag(a.v, "log_level", flags.Lookup("log-level"))
	bindFlag(a.v, "store.base_url", flags.Lookup("store-url"))
	bindFlag(a.v, "cache.driver", flags.Lookup("cache"))

	root.AddCommand(
		newServeCommand(a),
		newListCommand(a),
		newAddCommand(a),
		newEditCommand(a),
		newDeleteCommand(a),
		newSeedCommand(a),
		newExportCommand(a),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) init(cmd *cobra.Command) error {
	var envFiles []string
	if a.envFile != "" {
		envFiles = append(envFiles, a.envFile)
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return err
	}

	cfg, err := config.LoadWith(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	a.logger = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)
	slog.SetDefault(a.logger)

	a.logger.Debug("configuration loaded",
		"command", cmd.Name(),
		"store", cfg.Store.BaseURL,
		"cache", cfg.Cache.Driver,
		"events", cfg.Events.Enabled,
	)
	return nil
}
