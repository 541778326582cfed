// Package cli implements the wishcraft command line.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/princebabou/wishCraft/internal/config"
	"github.com/princebabou/wishCraft/internal/database"
	"github.com/princebabou/wishCraft/internal/logger"
)

// RootOptions holds global flags for all commands. Empty values fall back
// to the environment loaded by the config package.
type RootOptions struct {
	LogLevel  string
	LogFormat string
	DBDriver  string
	DBDSN     string

	Config config.Config
}

// ValidLogFormats defines the allowed log formats.
var ValidLogFormats = []string{"console", "json"}

// NewRootCommand creates the root command for the wishcraft CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "wishcraft",
		Short: "WishCraft - birthday cards with candles you blow out",
		Long: `WishCraft stores birthday cards under shareable slugs and reveals
their message once the recipient blows out the candles.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error|off), default $LOG_LEVEL")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format (console|json), default $LOG_FORMAT")
	cmd.PersistentFlags().StringVar(&opts.DBDriver, "db-driver", "", "database driver (sqlite|postgres), default $DB_DRIVER")
	cmd.PersistentFlags().StringVar(&opts.DBDSN, "db-dsn", "", "database DSN, default $DB_DSN")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewOpenCommand(opts))

	return cmd
}

func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Get()
	if err != nil {
		return err
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.LogFormat = o.LogFormat
	}
	if o.DBDriver != "" {
		cfg.DBDriver = o.DBDriver
	}
	if o.DBDSN != "" {
		cfg.DBDSN = o.DBDSN
	}

	if !isValidLogFormat(cfg.LogFormat) {
		return fmt.Errorf("invalid log format %q: must be one of %v", cfg.LogFormat, ValidLogFormats)
	}
	logger.InitWriter(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

	o.Config = cfg
	return nil
}

// openStore connects to the configured database and makes sure the schema
// exists. The caller closes the store.
func (o *RootOptions) openStore(ctx context.Context) (database.CardStore, error) {
	store, err := database.Open(o.Config.DBDriver, o.Config.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", o.Config.DBDriver, err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

// serverURL is the API root used by client commands when --server is unset.
func (o *RootOptions) serverURL() string {
	if o.Config.BaseURL != "" {
		return strings.TrimRight(o.Config.BaseURL, "/")
	}
	return "http://localhost:" + o.Config.Port
}

func isValidLogFormat(format string) bool {
	for _, f := range ValidLogFormats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}
