package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jsamuelsen/tarot-service/internal/domain"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

const cardColumns = `c.id, c.name, c.number, c.suit, c.card_type, c.archetype,
       cm.upright_meaning, cm.reversed_meaning, cm.upright_keywords, cm.reversed_keywords`

// CardRepository reads cards joined with an optional deck's meanings.
type CardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a card repository backed by the store.
func NewCardRepository(s *Store) *CardRepository {
	return &CardRepository{db: s.db}
}

// List returns every card, ordered by type, suit, and number.
func (r *CardRepository) List(ctx context.Context, deckID int64) ([]domain.CardDetail, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+cardColumns+`
FROM cards c
LEFT JOIN card_meanings cm ON cm.card_id = c.id AND cm.deck_id = ?
ORDER BY c.card_type, c.suit, c.number`, deckID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.CardDetail

	for rows.Next() {
		card, err := scanCardDetail(rows, deckID)
		if err != nil {
			return nil, fmt.Errorf("list cards: %w", err)
		}

		cards = append(cards, card)
	}

	return cards, rows.Err()
}

// Get returns one card with its meaning in deckID, if any.
func (r *CardRepository) Get(ctx context.Context, id, deckID int64) (*domain.CardDetail, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+cardColumns+`
FROM cards c
LEFT JOIN card_meanings cm ON cm.card_id = c.id AND cm.deck_id = ?
WHERE c.id = ?`, deckID, id)

	card, err := scanCardDetail(row, deckID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("card", idString(id))
	}

	if err != nil {
		return nil, fmt.Errorf("get card %d: %w", id, err)
	}

	return &card, nil
}

// GetMany loads a set of cards in one query.
func (r *CardRepository) GetMany(ctx context.Context, ids []int64, deckID int64) (map[int64]domain.CardDetail, error) {
	out := make(map[int64]domain.CardDetail, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, deckID)

	for _, id := range ids {
		args = append(args, id)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := r.db.QueryContext(ctx, `SELECT `+cardColumns+`
FROM cards c
LEFT JOIN card_meanings cm ON cm.card_id = c.id AND cm.deck_id = ?
WHERE c.id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get cards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		card, err := scanCardDetail(rows, deckID)
		if err != nil {
			return nil, fmt.Errorf("get cards: %w", err)
		}

		out[card.ID] = card
	}

	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCardDetail(s scanner, deckID int64) (domain.CardDetail, error) {
	var (
		d                              domain.CardDetail
		cardType                       string
		number                         sql.NullInt64
		suit, archetype                sql.NullString
		upright, reversed, upKW, revKW sql.NullString
	)

	if err := s.Scan(&d.ID, &d.Name, &number, &suit, &cardType, &archetype,
		&upright, &reversed, &upKW, &revKW); err != nil {
		return d, err
	}

	d.CardType = domain.CardType(cardType)
	d.Number = intPtr(number)
	d.Suit = strPtr(suit)
	d.Archetype = strPtr(archetype)

	if !upright.Valid {
		return d, nil
	}

	m := &domain.CardMeaning{
		CardID:          d.ID,
		DeckID:          deckID,
		UprightMeaning:  upright.String,
		ReversedMeaning: reversed.String,
	}

	var err error
	if m.UprightKeywords, err = decodeStrings(upKW.String); err != nil {
		return d, fmt.Errorf("card %d upright keywords: %w", d.ID, err)
	}

	if m.ReversedKeywords, err = decodeStrings(revKW.String); err != nil {
		return d, fmt.Errorf("card %d reversed keywords: %w", d.ID, err)
	}

	d.Meaning = m

	return d, nil
}

var _ ports.CardRepository = (*CardRepository)(nil)
