package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jsamuelsen/tarot-service/internal/domain"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

// SpreadRepository reads spread layouts.
type SpreadRepository struct {
	db *sql.DB
}

// NewSpreadRepository creates a spread repository backed by the store.
func NewSpreadRepository(s *Store) *SpreadRepository {
	return &SpreadRepository{db: s.db}
}

// List returns all spreads ordered by name.
func (r *SpreadRepository) List(ctx context.Context) ([]domain.SpreadType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, positions FROM spread_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list spreads: %w", err)
	}
	defer rows.Close()

	var spreads []domain.SpreadType

	for rows.Next() {
		sp, err := scanSpread(rows)
		if err != nil {
			return nil, fmt.Errorf("list spreads: %w", err)
		}

		spreads = append(spreads, sp)
	}

	return spreads, rows.Err()
}

// Get returns one spread.
func (r *SpreadRepository) Get(ctx context.Context, id int64) (*domain.SpreadType, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, positions FROM spread_types WHERE id = ?`, id)

	sp, err := scanSpread(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("spread type", idString(id))
	}

	if err != nil {
		return nil, fmt.Errorf("get spread %d: %w", id, err)
	}

	return &sp, nil
}

func scanSpread(s scanner) (domain.SpreadType, error) {
	var (
		sp        domain.SpreadType
		positions string
	)

	if err := s.Scan(&sp.ID, &sp.Name, &sp.Description, &positions); err != nil {
		return sp, err
	}

	if err := json.Unmarshal([]byte(positions), &sp.Positions); err != nil {
		return sp, fmt.Errorf("spread %d positions: %w", sp.ID, err)
	}

	return sp, nil
}

var _ ports.SpreadRepository = (*SpreadRepository)(nil)
