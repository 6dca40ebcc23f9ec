// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"board-banker/internal/model"
)

// Common errors for repository operations.
var (
	ErrGameNotFound = errors.New("game not found")
)

// GameRepository persists each game as a single document keyed by id.
// The document column carries the full serialized game; updated_date is
// refreshed on every save so the game list can sort by recency without
// decoding documents.
type GameRepository struct {
	pool *pgxpool.Pool
}

// NewGameRepository creates a new GameRepository instance.
func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

// Migrate creates the games table if it does not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			doc JSONB NOT NULL,
			updated_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_games_updated ON games(updated_date DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate games table: %w", err)
	}
	return nil
}

// Create inserts a new game document.
func (r *GameRepository) Create(ctx context.Context, game *model.Game) error {
	doc, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to encode game: %w", err)
	}

	const query = `
		INSERT INTO games (id, doc, updated_date)
		VALUES ($1, $2, $3)
	`
	if _, err := r.pool.Exec(ctx, query, game.ID, doc, game.UpdatedDate); err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

// GetByID retrieves a game by id. Returns ErrGameNotFound if absent.
func (r *GameRepository) GetByID(ctx context.Context, id string) (*model.Game, error) {
	const query = `SELECT doc FROM games WHERE id = $1`

	var doc []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	var game model.Game
	if err := json.Unmarshal(doc, &game); err != nil {
		return nil, fmt.Errorf("failed to decode game: %w", err)
	}
	return &game, nil
}

// Save replaces the stored document with the given snapshot and stamps
// its updated date. Returns ErrGameNotFound if the game no longer exists.
func (r *GameRepository) Save(ctx context.Context, game *model.Game) error {
	game.UpdatedDate = time.Now().UTC()

	doc, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to encode game: %w", err)
	}

	const query = `
		UPDATE games
		SET doc = $2, updated_date = $3
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, game.ID, doc, game.UpdatedDate)
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrGameNotFound
	}
	return nil
}

// Delete removes a game. Returns ErrGameNotFound if absent.
func (r *GameRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM games WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrGameNotFound
	}
	return nil
}

// List retrieves all games ordered by most recently updated.
func (r *GameRepository) List(ctx context.Context) ([]*model.Game, error) {
	const query = `SELECT doc FROM games ORDER BY updated_date DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*model.Game
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		var game model.Game
		if err := json.Unmarshal(doc, &game); err != nil {
			return nil, fmt.Errorf("failed to decode game: %w", err)
		}
		games = append(games, &game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}
