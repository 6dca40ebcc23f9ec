// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"board-banker/internal/config"
	"board-banker/internal/ledger"
	"board-banker/internal/model"
	"board-banker/internal/pkg/lock"
	"board-banker/internal/policy"
)

// Common errors for game operations.
var (
	ErrNameRequired  = errors.New("player name is required")
	ErrColorTaken    = errors.New("player color is already taken")
	ErrInvalidColor  = errors.New("invalid player color")
	ErrTooFewPlayers = errors.New("a game needs at least two players")
	ErrNoRecipients  = errors.New("distribute requires at least one recipient")
	ErrEmptyPot      = errors.New("the pot is empty")
)

// GameStore is the persistence boundary for game documents. Implemented by
// repository.GameRepository; tests supply an in-memory fake.
type GameStore interface {
	Create(ctx context.Context, game *model.Game) error
	GetByID(ctx context.Context, id string) (*model.Game, error)
	Save(ctx context.Context, game *model.Game) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*model.Game, error)
}

// RefillScheduler schedules and cancels the delayed pot refill for a game.
type RefillScheduler interface {
	Schedule(gameID string)
	Cancel(gameID string)
}

// GameService orchestrates every ledger operation: it serializes access per
// game, loads the current snapshot, computes the next one, and persists it.
// Failures surface before anything is written.
type GameService struct {
	store    GameStore
	locks    *lock.GameLock
	refills  RefillScheduler
	defaults config.GameConfig
}

// NewGameService creates a new GameService instance.
func NewGameService(store GameStore, locks *lock.GameLock, refills RefillScheduler, defaults config.GameConfig) *GameService {
	return &GameService{
		store:    store,
		locks:    locks,
		refills:  refills,
		defaults: defaults,
	}
}

// NewPlayer describes a player to create at game setup or mid-game.
type NewPlayer struct {
	Name  string
	Color model.Color
}

// CreateGame sets up a new game with the given players and house rules.
// Players receive the starting money (the configured default when zero) and
// the pot is seeded when free parking plus auto bonus are enabled.
func (s *GameService) CreateGame(ctx context.Context, name string, players []NewPlayer, startingMoney int64, settings model.Settings) (*model.Game, error) {
	if len(players) < 2 {
		return nil, ErrTooFewPlayers
	}
	if startingMoney <= 0 {
		startingMoney = s.defaults.StartingMoney
	}
	settings = policy.Normalize(settings)

	used := make(map[model.Color]bool)
	roster := make([]model.Player, 0, len(players))
	for _, p := range players {
		if p.Name == "" {
			return nil, ErrNameRequired
		}
		color, err := pickColor(p.Color, used)
		if err != nil {
			return nil, err
		}
		used[color] = true
		roster = append(roster, model.Player{
			ID:      uuid.NewString(),
			Name:    p.Name,
			Color:   color,
			Balance: startingMoney,
		})
	}

	if name == "" {
		name = fmt.Sprintf("Game %s", time.Now().Format("2006-01-02"))
	}

	game := &model.Game{
		ID:             uuid.NewString(),
		Name:           name,
		Players:        roster,
		FreeParkingPot: policy.SeedPot(settings),
		Settings:       settings,
		History:        []model.Entry{},
		UpdatedDate:    time.Now().UTC(),
	}

	if err := s.store.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.Info().
		Str("game_id", game.ID).
		Int("players", len(roster)).
		Int64("starting_money", startingMoney).
		Msg("Game created")

	return game, nil
}

// pickColor validates an explicit color choice or assigns the first free one.
func pickColor(c model.Color, used map[model.Color]bool) (model.Color, error) {
	if c != "" {
		if !c.Valid() {
			return "", ErrInvalidColor
		}
		if used[c] {
			return "", ErrColorTaken
		}
		return c, nil
	}
	for _, candidate := range model.AllColors() {
		if !used[candidate] {
			return candidate, nil
		}
	}
	return "", ErrColorTaken
}

// GetGame retrieves a game by id.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	return s.store.GetByID(ctx, gameID)
}

// ListGames retrieves all games, most recently updated first.
func (s *GameService) ListGames(ctx context.Context) ([]*model.Game, error) {
	return s.store.List(ctx)
}

// DeleteGame removes a game and cancels any pending pot refill so a
// deleted game is never resurrected by a stale timer.
func (s *GameService) DeleteGame(ctx context.Context, gameID string) error {
	s.refills.Cancel(gameID)
	err := s.locks.WithLock(gameID, func() error {
		return s.store.Delete(ctx, gameID)
	})
	if err != nil {
		return err
	}
	log.Info().Str("game_id", gameID).Msg("Game deleted")
	return nil
}

// UpdateNotes replaces the game's free-form notes.
func (s *GameService) UpdateNotes(ctx context.Context, gameID, notes string) (*model.Game, error) {
	return s.mutate(ctx, gameID, func(g *model.Game) (*model.Game, error) {
		next := *g
		next.Notes = notes
		return &next, nil
	})
}

// mutate runs one serialized read-modify-write cycle against a game:
// lock, load, compute the next snapshot, save. Nothing is persisted when
// fn fails.
func (s *GameService) mutate(ctx context.Context, gameID string, fn func(*model.Game) (*model.Game, error)) (*model.Game, error) {
	var next *model.Game
	err := s.locks.WithLock(gameID, func() error {
		game, err := s.store.GetByID(ctx, gameID)
		if err != nil {
			return err
		}
		next, err = fn(game)
		if err != nil {
			return err
		}
		return s.store.Save(ctx, next)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func nowUTC() time.Time { return time.Now().UTC() }

// applyTransaction runs one ledger transaction through a mutate cycle.
func (s *GameService) applyTransaction(ctx context.Context, gameID string, tx ledger.Transaction) (*model.Game, error) {
	return s.mutate(ctx, gameID, func(g *model.Game) (*model.Game, error) {
		return ledger.Apply(g, tx, time.Now().UTC())
	})
}
