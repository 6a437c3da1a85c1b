package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"guestreviews/internal/adapters/hostaway"
	"guestreviews/internal/app"
	"guestreviews/internal/domain"
)

type seedResult struct {
	File        string `json:"file"`
	Seen        int    `json:"seen"`
	Added       int    `json:"added"`
	Duplicates  int    `json:"duplicates"`
	SkippedType int    `json:"skipped_type"`
	Invalid     int    `json:"invalid"`
}

// NewSeedCommand loads a Hostaway export and ingests it. Running it again
// with the same file adds nothing.
func NewSeedCommand(rootOpts *RootOptions, defaultFile string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Ingest Hostaway reviews from a JSON export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := hostaway.LoadFile(file)
			if err != nil {
				return fmt.Errorf("load %s: %w", file, err)
			}
			return withStore(cmd.Context(), rootOpts, func(st Store) error {
				sum, err := app.NewIngestionService(st, nil, nil, 0).SeedHostaway(cmd.Context(), recs)
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), rootOpts.Format, toSeedResult(file, sum), func(w io.Writer) {
					line(w, "seeded %s: %d records, %d added, %d duplicates, %d skipped, %d invalid",
						file, sum.Seen, sum.Added, sum.Duplicates, sum.SkippedType, sum.Invalid)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", defaultFile, "Hostaway reviews JSON file")
	return cmd
}

func toSeedResult(file string, s domain.IngestSummary) seedResult {
	return seedResult{
		File:        file,
		Seen:        s.Seen,
		Added:       s.Added,
		Duplicates:  s.Duplicates,
		SkippedType: s.SkippedType,
		Invalid:     s.Invalid,
	}
}
