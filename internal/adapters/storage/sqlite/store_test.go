package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/tarot-service/internal/domain"
)

const riderWaiteSmithID = 1

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), Config{Path: filepath.Join(t.TempDir(), "tarot.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func countRows(t *testing.T, s *Store, query string, args ...any) int {
	t.Helper()

	var n int
	require.NoError(t, s.DB().QueryRowContext(context.Background(), query, args...).Scan(&n))

	return n
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(context.Background(), Config{Path: "  "})
	require.Error(t, err)
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tarot.db")

	first, err := Open(context.Background(), Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(context.Background(), Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	assert.Equal(t, 4, countRows(t, second, `SELECT COUNT(*) FROM schema_migrations`))
	assert.Equal(t, 78, countRows(t, second, `SELECT COUNT(*) FROM cards`))
}

func TestSeedData(t *testing.T) {
	s := openTempStore(t)

	assert.Equal(t, 22, countRows(t, s, `SELECT COUNT(*) FROM cards WHERE card_type = 'major'`))
	assert.Equal(t, 56, countRows(t, s, `SELECT COUNT(*) FROM cards WHERE card_type = 'minor'`))
	assert.Equal(t, 78, countRows(t, s, `SELECT COUNT(*) FROM card_meanings WHERE deck_id = ?`, riderWaiteSmithID))
	assert.Equal(t, 5, countRows(t, s, `SELECT COUNT(*) FROM spread_types`))
}

func TestStore_HealthCheck(t *testing.T) {
	s := openTempStore(t)

	assert.Equal(t, "sqlite", s.Name())
	assert.NoError(t, s.Check(context.Background()))
}

func TestCardRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCardRepository(openTempStore(t))

	t.Run("list without deck has no meanings", func(t *testing.T) {
		cards, err := repo.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, cards, 78)
		assert.Equal(t, domain.CardTypeMajor, cards[0].CardType)
		assert.Nil(t, cards[0].Meaning)
	})

	t.Run("list with deck joins meanings", func(t *testing.T) {
		cards, err := repo.List(ctx, riderWaiteSmithID)
		require.NoError(t, err)

		for _, c := range cards {
			require.NotNil(t, c.Meaning, c.Name)
			assert.NotEmpty(t, c.Meaning.UprightMeaning)
		}
	})

	t.Run("get fool", func(t *testing.T) {
		card, err := repo.Get(ctx, 1, riderWaiteSmithID)
		require.NoError(t, err)
		assert.Equal(t, "The Fool", card.Name)
		require.NotNil(t, card.Number)
		assert.Equal(t, 0, *card.Number)
		assert.Nil(t, card.Suit)
		assert.Contains(t, card.Meaning.UprightKeywords, "beginnings")
	})

	t.Run("get missing card", func(t *testing.T) {
		_, err := repo.Get(ctx, 999, 0)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("get many skips unknown ids", func(t *testing.T) {
		cards, err := repo.GetMany(ctx, []int64{1, 23, 999}, riderWaiteSmithID)
		require.NoError(t, err)
		assert.Len(t, cards, 2)
		assert.Equal(t, "Ace of Wands", cards[23].Name)
		assert.Equal(t, "Wands", *cards[23].Suit)
	})
}

func TestSpreadRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSpreadRepository(openTempStore(t))

	spreads, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, spreads, 5)
	assert.Equal(t, "Celtic Cross", spreads[0].Name)

	sp, err := repo.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, sp.CardCount())
	assert.Equal(t, "Past", sp.Positions[0].Name)

	_, err = repo.Get(ctx, 42)
	assert.True(t, domain.IsNotFound(err))
}

func TestDeckRepository_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	s := openTempStore(t)
	repo := NewDeckRepository(s)

	created, err := repo.Create(ctx, domain.Deck{Name: "Thoth", Description: "Crowley and Harris"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = repo.Create(ctx, domain.Deck{Name: "Thoth"})
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))

	assert.Equal(t, 1, countRows(t, s, `SELECT COUNT(*) FROM decks WHERE name = 'Thoth'`))
}

func TestDeckRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openTempStore(t)
	repo := NewDeckRepository(s)

	deck, err := repo.Create(ctx, domain.Deck{Name: "Marseille"})
	require.NoError(t, err)

	deck.Description = "Tarot de Marseille"
	updated, err := repo.Update(ctx, *deck)
	require.NoError(t, err)
	assert.Equal(t, "Tarot de Marseille", updated.Description)

	_, err = repo.Update(ctx, domain.Deck{ID: 999, Name: "Ghost"})
	assert.True(t, domain.IsNotFound(err))

	_, err = repo.Update(ctx, domain.Deck{ID: deck.ID, Name: "Rider-Waite-Smith"})
	assert.True(t, domain.IsConflict(err))

	_, err = repo.BulkUpsertCardMeanings(ctx, deck.ID, []domain.CardMeaning{{CardID: 1, UprightMeaning: "Le Mat"}})
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marseille", deleted.Name)
	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM card_meanings WHERE deck_id = ?`, deck.ID))

	_, err = repo.Delete(ctx, deck.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestDeckRepository_BulkUpsertIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := openTempStore(t)
	repo := NewDeckRepository(s)

	deck, err := repo.Create(ctx, domain.Deck{Name: "Wild Unknown"})
	require.NoError(t, err)

	batch := []domain.CardMeaning{
		{CardID: 1, UprightMeaning: "a"},
		{CardID: 2, UprightMeaning: "b"},
		{CardID: 3, UprightMeaning: "c"},
		{CardID: 999, UprightMeaning: "no such card"},
		{CardID: 4, UprightMeaning: "d"},
		{CardID: 5, UprightMeaning: "e"},
	}

	_, err = repo.BulkUpsertCardMeanings(ctx, deck.ID, batch)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM card_meanings WHERE deck_id = ?`, deck.ID))
}

func TestDeckRepository_BulkUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := openTempStore(t)
	repo := NewDeckRepository(s)

	_, err := repo.BulkUpsertCardMeanings(ctx, riderWaiteSmithID, []domain.CardMeaning{
		{CardID: 1, UprightMeaning: "Leap", UprightKeywords: []string{"leap"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 78, countRows(t, s, `SELECT COUNT(*) FROM card_meanings WHERE deck_id = ?`, riderWaiteSmithID))

	meanings, err := repo.ListCardMeanings(ctx, riderWaiteSmithID)
	require.NoError(t, err)
	require.Len(t, meanings, 78)
	assert.Equal(t, "The Fool", meanings[0].CardName)
	assert.Equal(t, "Leap", meanings[0].UprightMeaning)
	assert.Equal(t, []string{"leap"}, meanings[0].UprightKeywords)
	assert.Empty(t, meanings[0].ReversedKeywords)

	_, err = repo.BulkUpsertCardMeanings(ctx, 404, []domain.CardMeaning{{CardID: 1, UprightMeaning: "x"}})
	assert.True(t, domain.IsNotFound(err))

	_, err = repo.ListCardMeanings(ctx, 404)
	assert.True(t, domain.IsNotFound(err))
}

func TestDeckRepository_SingleMeaning(t *testing.T) {
	ctx := context.Background()
	repo := NewDeckRepository(openTempStore(t))

	updated, err := repo.UpdateCardMeaning(ctx, domain.CardMeaning{
		CardID: 2, DeckID: riderWaiteSmithID, UprightMeaning: "Will made real",
	})
	require.NoError(t, err)
	assert.Equal(t, "Will made real", updated.UprightMeaning)

	_, err = repo.UpdateCardMeaning(ctx, domain.CardMeaning{CardID: 2, DeckID: 404, UprightMeaning: "x"})
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, repo.DeleteCardMeaning(ctx, riderWaiteSmithID, 2))
	assert.True(t, domain.IsNotFound(repo.DeleteCardMeaning(ctx, riderWaiteSmithID, 2)))
}

func TestReadingRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewReadingRepository(openTempStore(t))

	drawn := []domain.DrawnCard{
		{CardID: 1, Position: 1, Reversed: false},
		{CardID: 17, Position: 2, Reversed: true},
		{CardID: 22, Position: 3, Reversed: false},
	}

	created, err := repo.Create(ctx, domain.Reading{
		SpreadTypeID:   2,
		DeckID:         riderWaiteSmithID,
		Question:       "What should I focus on?",
		CardsDrawn:     drawn,
		Interpretation: "The Fool awaits.",
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, drawn, got.CardsDrawn)
	assert.Equal(t, "The Fool awaits.", got.Interpretation)
	assert.Empty(t, got.UserID)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)

	_, err = repo.Get(ctx, created.ID+100)
	assert.True(t, domain.IsNotFound(err))

	_, err = repo.Create(ctx, domain.Reading{SpreadTypeID: 99, DeckID: 1, CardsDrawn: drawn, Interpretation: "x"})
	assert.True(t, domain.IsNotFound(err))

	_, err = repo.Create(ctx, domain.Reading{SpreadTypeID: 1, DeckID: 999, CardsDrawn: drawn, Interpretation: "x"})
	assert.True(t, domain.IsNotFound(err))
	assert.EqualError(t, err, "spread type or deck not found")
}

func TestReadingRepository_FeedbackAndSample(t *testing.T) {
	ctx := context.Background()
	repo := NewReadingRepository(openTempStore(t))

	create := func(q string) int64 {
		rd, err := repo.Create(ctx, domain.Reading{
			SpreadTypeID:   1,
			DeckID:         riderWaiteSmithID,
			Question:       q,
			CardsDrawn:     []domain.DrawnCard{{CardID: 1, Position: 1}},
			Interpretation: "About " + q,
		})
		require.NoError(t, err)

		return rd.ID
	}

	liked := create("liked")
	meh := create("meh")
	resonant := create("resonant")
	_ = create("unrated")

	for _, fb := range []domain.ReadingFeedback{
		{ReadingID: liked, AccuracyRating: 5, ResonanceRating: 2},
		{ReadingID: meh, AccuracyRating: 2, ResonanceRating: 3},
		{ReadingID: resonant, AccuracyRating: 1, ResonanceRating: 4, Notes: "spot on"},
	} {
		_, err := repo.AddFeedback(ctx, fb)
		require.NoError(t, err)
	}

	_, err := repo.AddFeedback(ctx, domain.ReadingFeedback{ReadingID: 999, AccuracyRating: 3, ResonanceRating: 3})
	assert.True(t, domain.IsNotFound(err))

	examples, err := repo.Sample(ctx, 3, 4)
	require.NoError(t, err)
	require.Len(t, examples, 2)
	assert.Equal(t, "resonant", examples[0].Question)
	assert.Equal(t, "liked", examples[1].Question)

	examples, err = repo.Sample(ctx, 1, 4)
	require.NoError(t, err)
	assert.Len(t, examples, 1)

	readings, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, readings, 4)
	assert.Equal(t, "unrated", readings[0].Question)
}
