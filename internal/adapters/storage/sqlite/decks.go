package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jsamuelsen/tarot-service/internal/domain"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

// DeckRepository persists decks and their card meanings.
type DeckRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewDeckRepository creates a deck repository backed by the store.
func NewDeckRepository(s *Store) *DeckRepository {
	return &DeckRepository{db: s.db, now: time.Now}
}

const deckColumns = `id, name, description, imagery_style, created_at`

// List returns all decks ordered by name.
func (r *DeckRepository) List(ctx context.Context) ([]domain.Deck, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+deckColumns+` FROM decks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close()

	var decks []domain.Deck

	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("list decks: %w", err)
		}

		decks = append(decks, d)
	}

	return decks, rows.Err()
}

// Get returns one deck.
func (r *DeckRepository) Get(ctx context.Context, id int64) (*domain.Deck, error) {
	return getDeck(ctx, r.db, id)
}

// Create inserts a deck.
func (r *DeckRepository) Create(ctx context.Context, deck domain.Deck) (*domain.Deck, error) {
	deck.CreatedAt = r.now().UTC().Truncate(time.Millisecond)

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO decks (name, description, imagery_style, created_at) VALUES (?, ?, ?, ?)`,
		deck.Name, deck.Description, deck.ImageryStyle, toMillis(deck.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewConflictErrorWithDetails("deck", "name already exists", deck.Name)
		}

		return nil, fmt.Errorf("create deck: %w", err)
	}

	if deck.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("create deck: %w", err)
	}

	return &deck, nil
}

// Update replaces a deck's mutable fields.
func (r *DeckRepository) Update(ctx context.Context, deck domain.Deck) (*domain.Deck, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE decks SET name = ?, description = ?, imagery_style = ? WHERE id = ?`,
		deck.Name, deck.Description, deck.ImageryStyle, deck.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewConflictErrorWithDetails("deck", "name already exists", deck.Name)
		}

		return nil, fmt.Errorf("update deck %d: %w", deck.ID, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.NewNotFoundError("deck", idString(deck.ID))
	}

	return r.Get(ctx, deck.ID)
}

// Delete removes a deck and returns it as it was.
func (r *DeckRepository) Delete(ctx context.Context, id int64) (*domain.Deck, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("delete deck %d: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	deck, err := getDeck(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id); err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NewConflictError("deck", "deck is referenced by existing readings")
		}

		return nil, fmt.Errorf("delete deck %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("delete deck %d: %w", id, err)
	}

	return deck, nil
}

// ListCardMeanings returns the deck's meanings annotated with card details.
func (r *DeckRepository) ListCardMeanings(ctx context.Context, deckID int64) ([]domain.DeckCardMeaning, error) {
	if _, err := getDeck(ctx, r.db, deckID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT cm.card_id, cm.deck_id, cm.upright_meaning, cm.reversed_meaning,
       cm.upright_keywords, cm.reversed_keywords, c.name, c.number, c.suit, c.card_type
FROM card_meanings cm
JOIN cards c ON c.id = cm.card_id
WHERE cm.deck_id = ?
ORDER BY c.card_type, c.suit, c.number`, deckID)
	if err != nil {
		return nil, fmt.Errorf("list card meanings: %w", err)
	}
	defer rows.Close()

	var out []domain.DeckCardMeaning

	for rows.Next() {
		var (
			m            domain.DeckCardMeaning
			upKW, revKW  string
			number       sql.NullInt64
			suit         sql.NullString
			cardTypeName string
		)

		if err := rows.Scan(&m.CardID, &m.DeckID, &m.UprightMeaning, &m.ReversedMeaning,
			&upKW, &revKW, &m.CardName, &number, &suit, &cardTypeName); err != nil {
			return nil, fmt.Errorf("list card meanings: %w", err)
		}

		if m.UprightKeywords, err = decodeStrings(upKW); err != nil {
			return nil, fmt.Errorf("card %d upright keywords: %w", m.CardID, err)
		}

		if m.ReversedKeywords, err = decodeStrings(revKW); err != nil {
			return nil, fmt.Errorf("card %d reversed keywords: %w", m.CardID, err)
		}

		m.Number = intPtr(number)
		m.Suit = strPtr(suit)
		m.CardType = domain.CardType(cardTypeName)
		out = append(out, m)
	}

	return out, rows.Err()
}

// BulkUpsertCardMeanings writes all meanings in one transaction, inserting
// new rows and overwriting existing (card, deck) pairs.
func (r *DeckRepository) BulkUpsertCardMeanings(
	ctx context.Context,
	deckID int64,
	meanings []domain.CardMeaning,
) ([]domain.CardMeaning, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("bulk upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := getDeck(ctx, tx, deckID); err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO card_meanings
    (card_id, deck_id, upright_meaning, reversed_meaning, upright_keywords, reversed_keywords, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (card_id, deck_id) DO UPDATE SET
    upright_meaning = excluded.upright_meaning,
    reversed_meaning = excluded.reversed_meaning,
    upright_keywords = excluded.upright_keywords,
    reversed_keywords = excluded.reversed_keywords,
    updated_at = excluded.updated_at`)
	if err != nil {
		return nil, fmt.Errorf("bulk upsert: %w", err)
	}
	defer stmt.Close()

	now := toMillis(r.now())
	out := make([]domain.CardMeaning, 0, len(meanings))

	for _, m := range meanings {
		m.DeckID = deckID

		upKW, revKW, err := encodeKeywords(m)
		if err != nil {
			return nil, err
		}

		if _, err := stmt.ExecContext(ctx, m.CardID, deckID, m.UprightMeaning, m.ReversedMeaning,
			upKW, revKW, now); err != nil {
			if isForeignKeyViolation(err) {
				return nil, domain.NewNotFoundError("card", idString(m.CardID))
			}

			return nil, fmt.Errorf("upsert meaning for card %d: %w", m.CardID, err)
		}

		out = append(out, m)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("bulk upsert: %w", err)
	}

	return out, nil
}

// UpdateCardMeaning overwrites an existing meaning.
func (r *DeckRepository) UpdateCardMeaning(ctx context.Context, m domain.CardMeaning) (*domain.CardMeaning, error) {
	upKW, revKW, err := encodeKeywords(m)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `UPDATE card_meanings
SET upright_meaning = ?, reversed_meaning = ?, upright_keywords = ?, reversed_keywords = ?, updated_at = ?
WHERE card_id = ? AND deck_id = ?`,
		m.UprightMeaning, m.ReversedMeaning, upKW, revKW, toMillis(r.now()), m.CardID, m.DeckID)
	if err != nil {
		return nil, fmt.Errorf("update card meaning: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.NewNotFoundError("card meaning", fmt.Sprintf("%d/%d", m.DeckID, m.CardID))
	}

	return &m, nil
}

// DeleteCardMeaning removes one meaning.
func (r *DeckRepository) DeleteCardMeaning(ctx context.Context, deckID, cardID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM card_meanings WHERE deck_id = ? AND card_id = ?`, deckID, cardID)
	if err != nil {
		return fmt.Errorf("delete card meaning: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("card meaning", fmt.Sprintf("%d/%d", deckID, cardID))
	}

	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getDeck(ctx context.Context, q queryRower, id int64) (*domain.Deck, error) {
	d, err := scanDeck(q.QueryRowContext(ctx, `SELECT `+deckColumns+` FROM decks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("deck", idString(id))
	}

	if err != nil {
		return nil, fmt.Errorf("get deck %d: %w", id, err)
	}

	return &d, nil
}

func scanDeck(s scanner) (domain.Deck, error) {
	var (
		d       domain.Deck
		created int64
	)

	if err := s.Scan(&d.ID, &d.Name, &d.Description, &d.ImageryStyle, &created); err != nil {
		return d, err
	}

	d.CreatedAt = fromMillis(created)

	return d, nil
}

func encodeKeywords(m domain.CardMeaning) (string, string, error) {
	up := m.UprightKeywords
	if up == nil {
		up = []string{}
	}

	rev := m.ReversedKeywords
	if rev == nil {
		rev = []string{}
	}

	upKW, err := encodeJSON(up)
	if err != nil {
		return "", "", fmt.Errorf("encode upright keywords: %w", err)
	}

	revKW, err := encodeJSON(rev)
	if err != nil {
		return "", "", fmt.Errorf("encode reversed keywords: %w", err)
	}

	return upKW, revKW, nil
}

var _ ports.DeckRepository = (*DeckRepository)(nil)
