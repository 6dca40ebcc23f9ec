package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"board-banker/internal/ledger"
	"board-banker/internal/model"
	"board-banker/internal/policy"
)

// AddPlayer adds a player mid-game with the given starting money (the
// configured default when zero). The color must be free; an empty color
// picks the first available one.
func (s *GameService) AddPlayer(ctx context.Context, gameID string, p NewPlayer, startingMoney int64) (*model.Game, error) {
	if p.Name == "" {
		return nil, ErrNameRequired
	}
	if startingMoney <= 0 {
		startingMoney = s.defaults.StartingMoney
	}
	return s.mutate(ctx, gameID, func(g *model.Game) (*model.Game, error) {
		used := make(map[model.Color]bool, len(g.Players))
		for _, existing := range g.Players {
			used[existing.Color] = true
		}
		color, err := pickColor(p.Color, used)
		if err != nil {
			return nil, err
		}

		player := model.Player{
			ID:      uuid.NewString(),
			Name:    p.Name,
			Color:   color,
			Balance: startingMoney,
		}

		next := *g
		next.Players = append(append([]model.Player{}, g.Players...), player)
		next.History = ledger.AppendEntry(g.History, model.Entry{
			Timestamp:   nowUTC(),
			Type:        model.EntryPlayerAdded,
			Description: fmt.Sprintf("%s joined the game with $%d", p.Name, startingMoney),
			Amount:      startingMoney,
			From:        model.Bank(),
			To:          model.PlayerAccount(player.ID),
		})
		return &next, nil
	})
}

// RemovePlayer drops a player from the game. Their balance is discarded
// (returned to the bank); no other balance changes.
func (s *GameService) RemovePlayer(ctx context.Context, gameID, playerID string) (*model.Game, error) {
	return s.mutate(ctx, gameID, func(g *model.Game) (*model.Game, error) {
		removed := g.PlayerByID(playerID)
		if removed == nil {
			return nil, ledger.ErrAccountNotFound
		}

		next := *g
		next.Players = withoutPlayer(g.Players, playerID)
		next.History = ledger.AppendEntry(g.History, model.Entry{
			Timestamp:   nowUTC(),
			Type:        model.EntryPlayerRemoved,
			Description: fmt.Sprintf("%s dropped out (funds returned to bank)", removed.Name),
			Amount:      removed.Balance,
			From:        model.PlayerAccount(playerID),
			To:          model.Bank(),
		})
		return &next, nil
	})
}

// DistributeAndRemove drops a player and splits their balance evenly among
// the given recipients. Each recipient gains floor(balance/recipients); the
// integer-division remainder is deliberately dropped, and the aggregate
// entry records exactly what was distributed.
func (s *GameService) DistributeAndRemove(ctx context.Context, gameID, playerID string, recipientIDs []string) (*model.Game, error) {
	if len(recipientIDs) == 0 {
		return nil, ErrNoRecipients
	}
	return s.mutate(ctx, gameID, func(g *model.Game) (*model.Game, error) {
		removed := g.PlayerByID(playerID)
		if removed == nil {
			return nil, ledger.ErrAccountNotFound
		}
		recipients := make(map[string]bool, len(recipientIDs))
		for _, id := range recipientIDs {
			if id == playerID {
				return nil, ErrNoRecipients
			}
			if g.PlayerByID(id) == nil {
				return nil, ledger.ErrAccountNotFound
			}
			recipients[id] = true
		}

		perPlayer := removed.Balance / int64(len(recipients))

		next := *g
		next.Players = withoutPlayer(g.Players, playerID)
		var names []string
		for i := range next.Players {
			if recipients[next.Players[i].ID] {
				next.Players[i].Balance += perPlayer
				names = append(names, next.Players[i].Name)
			}
		}

		next.History = ledger.AppendEntry(g.History, model.Entry{
			Timestamp: nowUTC(),
			Type:      model.EntryPlayerDistributed,
			Description: fmt.Sprintf("%s dropped out. $%d each distributed to: %s",
				removed.Name, perPlayer, strings.Join(names, ", ")),
			Amount: perPlayer * int64(len(recipients)),
			From:   model.PlayerAccount(playerID),
			To:     model.Multiple(),
		})
		return &next, nil
	})
}

// CollectPot pays the entire pot to one player and empties it. When the
// auto bonus rule is on, a delayed refill is scheduled; the scheduler
// re-checks the game and its settings at fire time.
func (s *GameService) CollectPot(ctx context.Context, gameID, playerID string) (*model.Game, error) {
	game, err := s.mutate(ctx, gameID, func(g *model.Game) (*model.Game, error) {
		collector := g.PlayerByID(playerID)
		if collector == nil {
			return nil, ledger.ErrAccountNotFound
		}
		if g.FreeParkingPot <= 0 {
			return nil, ErrEmptyPot
		}

		pot := g.FreeParkingPot
		next := *g
		next.Players = make([]model.Player, len(g.Players))
		copy(next.Players, g.Players)
		next.PlayerByID(playerID).Balance += pot
		next.FreeParkingPot = 0
		next.History = ledger.AppendEntry(g.History, model.Entry{
			Timestamp:   nowUTC(),
			Type:        model.EntryFreeParkingCollect,
			Description: fmt.Sprintf("%s collected Free Parking pot of $%d", collector.Name, pot),
			Amount:      pot,
			From:        model.Pot(),
			To:          model.PlayerAccount(playerID),
		})
		return &next, nil
	})
	if err != nil {
		return nil, err
	}

	if game.Settings.FreeParkingEnabled && game.Settings.AutoPotBonus {
		s.refills.Schedule(gameID)
	}
	return game, nil
}

// AddToPot moves money from a player into the pot.
func (s *GameService) AddToPot(ctx context.Context, gameID, playerID string, amount int64) (*model.Game, error) {
	return s.applyTransaction(ctx, gameID, ledger.Transaction{
		From:        model.PlayerAccount(playerID),
		To:          model.Pot(),
		Amount:      amount,
		Type:        model.EntryFreeParkingAdd,
		Description: fmt.Sprintf("Added $%d to Free Parking", amount),
	})
}

// UpdateSettings replaces the house rules wholesale. Enabling the auto
// bonus while the pot sits empty seeds it immediately; any pending delayed
// refill is cancelled because it was scheduled under the old rules.
func (s *GameService) UpdateSettings(ctx context.Context, gameID string, settings model.Settings) (*model.Game, error) {
	s.refills.Cancel(gameID)
	game, err := s.mutate(ctx, gameID, func(g *model.Game) (*model.Game, error) {
		normalized := policy.Normalize(settings)
		next := *g
		next.Settings = normalized
		if normalized.FreeParkingEnabled && normalized.AutoPotBonus && next.FreeParkingPot == 0 {
			next.FreeParkingPot = policy.AutoRefillAmount(normalized)
		}
		return &next, nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("game_id", gameID).Msg("Settings updated")
	return game, nil
}

// withoutPlayer returns a copy of players with the given id removed.
func withoutPlayer(players []model.Player, id string) []model.Player {
	out := make([]model.Player, 0, len(players)-1)
	for _, p := range players {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
