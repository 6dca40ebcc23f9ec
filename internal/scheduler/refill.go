// Package scheduler implements the delayed Free Parking refill: after a
// manual pot collection the pot restocks itself a few seconds later. Each
// game has at most one pending refill, and a refill is cancellable — a
// deleted game or changed rules must never be written back by a stale timer.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"board-banker/internal/model"
	"board-banker/internal/pkg/lock"
	"board-banker/internal/policy"
	"board-banker/internal/repository"
)

// GameStore is the subset of the repository the scheduler needs.
type GameStore interface {
	GetByID(ctx context.Context, id string) (*model.Game, error)
	Save(ctx context.Context, game *model.Game) error
}

// PotRefill schedules one-shot delayed pot refills keyed by game id.
type PotRefill struct {
	store GameStore
	locks *lock.GameLock
	delay time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewPotRefill creates a new PotRefill scheduler.
func NewPotRefill(store GameStore, locks *lock.GameLock, delay time.Duration) *PotRefill {
	return &PotRefill{
		store:  store,
		locks:  locks,
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms the refill for a game, replacing any pending one.
func (p *PotRefill) Schedule(gameID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.timers[gameID]; ok {
		t.Stop()
	}
	p.timers[gameID] = time.AfterFunc(p.delay, func() {
		p.fire(gameID)
	})
}

// Cancel disarms any pending refill for a game.
func (p *PotRefill) Cancel(gameID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.timers[gameID]; ok {
		t.Stop()
		delete(p.timers, gameID)
	}
}

// Stop disarms every pending refill. Used on shutdown.
func (p *PotRefill) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, t := range p.timers {
		t.Stop()
		delete(p.timers, id)
	}
}

// fire re-loads the game and applies the refill only if the game still
// exists and its settings still request it. Captured values are not
// trusted; everything is re-checked against the stored snapshot.
func (p *PotRefill) fire(gameID string) {
	p.mu.Lock()
	delete(p.timers, gameID)
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := p.locks.WithLock(gameID, func() error {
		game, err := p.store.GetByID(ctx, gameID)
		if err != nil {
			if errors.Is(err, repository.ErrGameNotFound) {
				log.Debug().Str("game_id", gameID).Msg("Refill skipped: game no longer exists")
				return nil
			}
			return err
		}
		if !game.Settings.FreeParkingEnabled || !game.Settings.AutoPotBonus {
			log.Debug().Str("game_id", gameID).Msg("Refill skipped: rule disabled")
			return nil
		}

		game.FreeParkingPot = policy.AutoRefillAmount(game.Settings)
		if err := p.store.Save(ctx, game); err != nil {
			return err
		}
		log.Info().
			Str("game_id", gameID).
			Int64("pot", game.FreeParkingPot).
			Msg("Free Parking pot refilled")
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("game_id", gameID).Msg("Pot refill failed")
	}
}
