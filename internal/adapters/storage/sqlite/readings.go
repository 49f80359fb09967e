package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jsamuelsen/tarot-service/internal/domain"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

// ReadingRepository persists readings and feedback. It also serves as the
// past-example provider for few-shot prompting.
type ReadingRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewReadingRepository creates a reading repository backed by the store.
func NewReadingRepository(s *Store) *ReadingRepository {
	return &ReadingRepository{db: s.db, now: time.Now}
}

const readingColumns = `id, user_id, spread_type_id, deck_id, question, cards_drawn, interpretation, created_at`

// List returns readings newest first.
func (r *ReadingRepository) List(ctx context.Context) ([]domain.Reading, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+readingColumns+` FROM readings ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	var readings []domain.Reading

	for rows.Next() {
		rd, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("list readings: %w", err)
		}

		readings = append(readings, rd)
	}

	return readings, rows.Err()
}

// Get returns one reading.
func (r *ReadingRepository) Get(ctx context.Context, id int64) (*domain.Reading, error) {
	rd, err := scanReading(r.db.QueryRowContext(ctx,
		`SELECT `+readingColumns+` FROM readings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("reading", idString(id))
	}

	if err != nil {
		return nil, fmt.Errorf("get reading %d: %w", id, err)
	}

	return &rd, nil
}

// Create inserts a reading.
func (r *ReadingRepository) Create(ctx context.Context, reading domain.Reading) (*domain.Reading, error) {
	drawn, err := json.Marshal(reading.CardsDrawn)
	if err != nil {
		return nil, fmt.Errorf("encode cards drawn: %w", err)
	}

	reading.CreatedAt = r.now().UTC().Truncate(time.Millisecond)

	res, err := r.db.ExecContext(ctx, `INSERT INTO readings
    (user_id, spread_type_id, deck_id, question, cards_drawn, interpretation, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullString(reading.UserID), reading.SpreadTypeID, reading.DeckID, nullString(reading.Question),
		string(drawn), reading.Interpretation, toMillis(reading.CreatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NewNotFoundError("spread type or deck", "")
		}

		return nil, fmt.Errorf("create reading: %w", err)
	}

	if reading.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("create reading: %w", err)
	}

	return &reading, nil
}

// AddFeedback attaches a rating to a reading.
func (r *ReadingRepository) AddFeedback(ctx context.Context, fb domain.ReadingFeedback) (*domain.ReadingFeedback, error) {
	fb.CreatedAt = r.now().UTC().Truncate(time.Millisecond)

	res, err := r.db.ExecContext(ctx, `INSERT INTO reading_feedback
    (reading_id, accuracy_rating, resonance_rating, notes, created_at)
VALUES (?, ?, ?, ?, ?)`,
		fb.ReadingID, fb.AccuracyRating, fb.ResonanceRating, fb.Notes, toMillis(fb.CreatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NewNotFoundError("reading", idString(fb.ReadingID))
		}

		return nil, fmt.Errorf("add feedback: %w", err)
	}

	if fb.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("add feedback: %w", err)
	}

	return &fb, nil
}

// Sample returns well-rated past readings, most recent first.
func (r *ReadingRepository) Sample(ctx context.Context, limit, minRating int) ([]domain.PastExample, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT r.id, COALESCE(r.question, ''), r.interpretation
FROM readings r
WHERE EXISTS (
    SELECT 1 FROM reading_feedback f
    WHERE f.reading_id = r.id AND (f.accuracy_rating >= ? OR f.resonance_rating >= ?)
)
ORDER BY r.created_at DESC, r.id DESC
LIMIT ?`, minRating, minRating, limit)
	if err != nil {
		return nil, fmt.Errorf("sample past readings: %w", err)
	}
	defer rows.Close()

	var out []domain.PastExample

	for rows.Next() {
		var ex domain.PastExample
		if err := rows.Scan(&ex.ReadingID, &ex.Question, &ex.Interpretation); err != nil {
			return nil, fmt.Errorf("sample past readings: %w", err)
		}

		out = append(out, ex)
	}

	return out, rows.Err()
}

func scanReading(s scanner) (domain.Reading, error) {
	var (
		rd               domain.Reading
		userID, question sql.NullString
		drawn            string
		created          int64
	)

	if err := s.Scan(&rd.ID, &userID, &rd.SpreadTypeID, &rd.DeckID, &question,
		&drawn, &rd.Interpretation, &created); err != nil {
		return rd, err
	}

	if err := json.Unmarshal([]byte(drawn), &rd.CardsDrawn); err != nil {
		return rd, fmt.Errorf("reading %d cards drawn: %w", rd.ID, err)
	}

	rd.UserID = userID.String
	rd.Question = question.String
	rd.CreatedAt = fromMillis(created)

	return rd, nil
}

var (
	_ ports.ReadingRepository   = (*ReadingRepository)(nil)
	_ ports.PastExampleProvider = (*ReadingRepository)(nil)
)
