package cli

import (
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the listings and reviews tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), rootOpts, func(st Store) error {
				if err := st.Migrate(cmd.Context()); err != nil {
					return err
				}
				log.Info().Msg("schema applied")
				return emit(cmd.OutOrStdout(), rootOpts.Format, map[string]string{"status": "ok"}, func(w io.Writer) {
					line(w, "schema applied")
				})
			})
		},
	}
}
