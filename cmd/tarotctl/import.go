package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/tarot-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/tarot-service/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/tarot-service/internal/app"
)

func newImportMeaningsCmd(opts *rootOptions) *cobra.Command {
	var deckID int64

	cmd := &cobra.Command{
		Use:   "import-meanings FILE",
		Short: "Upsert a deck's card meanings from a JSON file",
		Long: `Read a bulk upload body ({"cardMeanings": [...]}) from FILE, or stdin when FILE
is "-", and upsert every meaning into the deck. The batch is validated first
and rejected as a whole when any element is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var body dto.BulkCardMeaningsRequest
			if err := decodeFile(cmd, args[0], &body); err != nil {
				return err
			}

			if err := dto.Validate(&body); err != nil {
				return err
			}

			store, logger, err := opts.openStore(ctx, false)
			if err != nil {
				return err
			}
			defer store.Close()

			decks := app.NewDeckService(app.DeckServiceConfig{
				Decks:  sqlite.NewDeckRepository(store),
				Logger: logger,
			})

			saved, err := decks.BulkUpsertCardMeanings(ctx, deckID, body.ToDomain(deckID))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved %d card meanings to deck %d\n", len(saved), deckID)

			return nil
		},
	}

	cmd.Flags().Int64VarP(&deckID, "deck", "d", 0, "Target deck ID (required)")
	_ = cmd.MarkFlagRequired("deck")

	return cmd
}

func decodeFile(cmd *cobra.Command, path string, v any) error {
	var r io.Reader = cmd.InOrStdin()

	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()

		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	return nil
}
