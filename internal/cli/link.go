package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"guestreviews/internal/domain"
)

type linkResult struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	GooglePlaceID *string `json:"google_place_id"`
	ImageURL      *string `json:"image_url"`
}

// NewLinkCommand sets the Google place id and/or image of a listing. Flags
// left out keep their stored value.
func NewLinkCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		listingID int64
		placeID   string
		imageURL  string
	)
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Attach a Google place id or image to a listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var meta domain.ListingMeta
			if cmd.Flags().Changed("place-id") {
				meta.GooglePlaceID = &placeID
			}
			if cmd.Flags().Changed("image-url") {
				meta.ImageURL = &imageURL
			}
			if meta.GooglePlaceID == nil && meta.ImageURL == nil {
				return errors.New("nothing to update: pass --place-id and/or --image-url")
			}

			return withStore(cmd.Context(), rootOpts, func(st Store) error {
				l, err := st.UpdateListingMeta(cmd.Context(), listingID, meta)
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("listing %d not found", listingID)
				}
				if err != nil {
					return err
				}
				res := linkResult{ID: l.ID, Name: l.Name, GooglePlaceID: l.GooglePlaceID, ImageURL: l.ImageURL}
				return emit(cmd.OutOrStdout(), rootOpts.Format, res, func(w io.Writer) {
					line(w, "listing %d (%s) updated", l.ID, l.Name)
				})
			})
		},
	}
	cmd.Flags().Int64Var(&listingID, "listing-id", 0, "listing to update")
	cmd.Flags().StringVar(&placeID, "place-id", "", "Google Places place_id")
	cmd.Flags().StringVar(&imageURL, "image-url", "", "listing image URL")
	_ = cmd.MarkFlagRequired("listing-id")
	return cmd
}
