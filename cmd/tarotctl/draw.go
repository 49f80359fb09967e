package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/tarot-service/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/tarot-service/internal/app"
	"github.com/jsamuelsen/tarot-service/internal/domain"
)

// seedDeckID is the Rider-Waite-Smith deck installed by the seed migration.
const seedDeckID = 1

type drawOptions struct {
	spreadID int64
	deckID   int64
	seed     uint64
	asJSON   bool
}

func newDrawCmd(opts *rootOptions) *cobra.Command {
	d := &drawOptions{}

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Draw cards for a spread from the stored deck",
		Long: `Draw shuffles the full card catalogue and deals one card per spread position,
each upright or reversed with equal odds. The output is the cardsDrawn array
accepted by the readings and interpret endpoints when --json is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDraw(cmd, opts, d)
		},
	}

	cmd.Flags().Int64VarP(&d.spreadID, "spread", "s", 0, "Spread type ID (required)")
	cmd.Flags().Int64Var(&d.deckID, "deck", seedDeckID, "Deck whose meanings are shown (0 for none)")
	cmd.Flags().Uint64Var(&d.seed, "seed", 0, "Seed for a repeatable draw (0 draws randomly)")
	cmd.Flags().BoolVar(&d.asJSON, "json", false, "Print the draw as JSON")
	_ = cmd.MarkFlagRequired("spread")

	return cmd
}

func runDraw(cmd *cobra.Command, opts *rootOptions, d *drawOptions) error {
	ctx := cmd.Context()

	store, logger, err := opts.openStore(ctx, false)
	if err != nil {
		return err
	}
	defer store.Close()

	catalog := app.NewCatalogService(app.CatalogServiceConfig{
		Cards:   sqlite.NewCardRepository(store),
		Spreads: sqlite.NewSpreadRepository(store),
		Logger:  logger,
	})

	spread, err := catalog.GetSpread(ctx, d.spreadID)
	if err != nil {
		return err
	}

	details, err := catalog.ListCards(ctx, d.deckID)
	if err != nil {
		return err
	}

	deck := make([]domain.Card, 0, len(details))
	byID := make(map[int64]domain.CardDetail, len(details))

	for _, cd := range details {
		deck = append(deck, cd.Card)
		byID[cd.ID] = cd
	}

	seed := d.seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	drawn, err := domain.Draw(deck, *spread, rand.New(rand.NewPCG(seed, seed)))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if d.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(drawn)
	}

	fmt.Fprintf(out, "%s (seed %d)\n\n", spread.Name, seed)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POSITION\tCARD\tORIENTATION\tMEANING")

	for _, dc := range drawn {
		pos, err := spread.Position(dc.Position)
		if err != nil {
			return err
		}

		card := byID[dc.CardID]
		fmt.Fprintf(w, "%d. %s\t%s\t%s\t%s\n",
			dc.Position, pos.Name, card.Name, orientation(dc.Reversed), meaningFor(card, dc.Reversed))
	}

	return w.Flush()
}

func orientation(reversed bool) string {
	if reversed {
		return "reversed"
	}

	return "upright"
}

func meaningFor(card domain.CardDetail, reversed bool) string {
	if card.Meaning == nil {
		return "-"
	}

	if reversed {
		return card.Meaning.ReversedMeaning
	}

	return card.Meaning.UprightMeaning
}
