// Command examdocs builds the exam documents from the command line, without
// the web server. It reads the same environment as the server.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"exam-docs/internal/config"
	"exam-docs/internal/db"
	"exam-docs/internal/logging"
	"exam-docs/internal/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose bool
	timeout time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "examdocs",
	Short: "Generate exam seating documents",
	Long: `examdocs builds the printable exam documents (statements, registration
lists, the general statement, the transfer act and accompanying sheets)
from the "Ученики" table.

Connection settings come from DATABASE_URL or PG_* variables, optionally
loaded from a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if verbose {
			cfg.Debug = true
		}
		// Console encoding reads better in a terminal.
		if cfg.LogFormat == "json" {
			cfg.LogFormat = "console"
		}
		var err error
		logger, err = logging.New(cfg)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Operation timeout")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(classroomsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore connects with a small pool; the CLI issues one query at a time.
func openStore(ctx context.Context) (*models.Store, *sql.DB, error) {
	conn, err := db.Connect(ctx, cfg.DatabaseURL, db.Options{MaxOpenConns: 2, MaxIdleConns: 1})
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("connected to database")
	return models.NewStore(conn), conn, nil
}
