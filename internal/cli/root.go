// Package cli implements the reviewsctl operator commands.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"

	"guestreviews/internal/domain"
	"guestreviews/internal/shared"
	mysqlrepo "guestreviews/internal/storage/mysql"
)

// Store is what the commands need from the database.
type Store interface {
	domain.ReviewRepository
	Migrate(ctx context.Context) error
}

// Opener connects to the store named by dsn. The returned Closer is closed
// when the command finishes.
type Opener func(ctx context.Context, dsn string) (Store, io.Closer, error)

// OpenMySQL is the production Opener.
func OpenMySQL(ctx context.Context, dsn string) (Store, io.Closer, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping mysql: %w", err)
	}
	return mysqlrepo.New(db), db, nil
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DSN    string
	Format string // "json" | "text"
	open   Opener
}

var validFormats = []string{"text", "json"}

// NewRootCommand builds reviewsctl. Flag defaults come from cfg.
func NewRootCommand(cfg shared.Config, open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "reviewsctl",
		Short: "Operate the guest reviews store",
		Long:  "Apply the schema, seed Hostaway reviews and link listings to Google Places.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", cfg.MySQLDSN, "MySQL DSN (needs parseTime=true)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts, cfg.SeedFile))
	cmd.AddCommand(NewLinkCommand(opts))
	return cmd
}

// withStore opens the store for the duration of fn.
func withStore(ctx context.Context, opts *RootOptions, fn func(Store) error) error {
	st, closer, err := opts.open(ctx, opts.DSN)
	if err != nil {
		return err
	}
	defer closer.Close()
	return fn(st)
}
