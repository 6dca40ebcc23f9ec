package service

import (
	"context"
	"fmt"

	"board-banker/internal/ledger"
	"board-banker/internal/model"
	"board-banker/internal/policy"
)

// PassGoAmount is the fixed payout for passing GO.
const PassGoAmount int64 = 200

// ApplyTransaction applies a fully-formed transaction intent. The typed
// flows below are the usual entry points; this one serves custom intents
// whose routing the caller already decided.
func (s *GameService) ApplyTransaction(ctx context.Context, gameID string, tx ledger.Transaction) (*model.Game, error) {
	return s.applyTransaction(ctx, gameID, tx)
}

// PassGo pays the fixed GO amount from the bank to a player.
func (s *GameService) PassGo(ctx context.Context, gameID, playerID string) (*model.Game, error) {
	return s.applyTransaction(ctx, gameID, ledger.Transaction{
		From:        model.Bank(),
		To:          model.PlayerAccount(playerID),
		Amount:      PassGoAmount,
		Type:        model.EntryPassGo,
		Description: fmt.Sprintf("Passed GO - collected $%d", PassGoAmount),
	})
}

// Bonus pays a custom bonus from the bank to a player.
func (s *GameService) Bonus(ctx context.Context, gameID, playerID string, amount int64) (*model.Game, error) {
	return s.applyTransaction(ctx, gameID, ledger.Transaction{
		From:        model.Bank(),
		To:          model.PlayerAccount(playerID),
		Amount:      amount,
		Type:        model.EntryBonus,
		Description: fmt.Sprintf("Bonus of $%d", amount),
	})
}

// PayRent moves rent between two players.
func (s *GameService) PayRent(ctx context.Context, gameID, fromID, toID string, amount int64) (*model.Game, error) {
	return s.applyTransaction(ctx, gameID, ledger.Transaction{
		From:        model.PlayerAccount(fromID),
		To:          model.PlayerAccount(toID),
		Amount:      amount,
		Type:        model.EntryRent,
		Description: fmt.Sprintf("Rent payment of $%d", amount),
	})
}

// PurchaseProperty charges a player for a property. The money routes to
// the pot only under all-out free parking, else to the bank.
func (s *GameService) PurchaseProperty(ctx context.Context, gameID, playerID string, amount int64) (*model.Game, error) {
	return s.withSettings(ctx, gameID, func(settings model.Settings) ledger.Transaction {
		return ledger.Transaction{
			From:        model.PlayerAccount(playerID),
			To:          policy.PurchaseDestination(settings),
			Amount:      amount,
			Type:        model.EntryPropertyPurchase,
			Description: fmt.Sprintf("Property purchase for $%d", amount),
		}
	})
}

// PurchaseHouses charges a player for houses/hotels at unitCost each.
func (s *GameService) PurchaseHouses(ctx context.Context, gameID, playerID string, unitCost, quantity int64) (*model.Game, error) {
	total := unitCost * quantity
	return s.withSettings(ctx, gameID, func(settings model.Settings) ledger.Transaction {
		return ledger.Transaction{
			From:        model.PlayerAccount(playerID),
			To:          policy.PurchaseDestination(settings),
			Amount:      total,
			Type:        model.EntryHousePurchase,
			Description: fmt.Sprintf("Purchased %d house(s)/hotel(s) for $%d", quantity, total),
		}
	})
}

// SellHouses pays a player the configured percentage of the build cost.
func (s *GameService) SellHouses(ctx context.Context, gameID, playerID string, unitCost, quantity int64) (*model.Game, error) {
	return s.withSettings(ctx, gameID, func(settings model.Settings) ledger.Transaction {
		pct := settings.HouseSellPercentage
		payout := policy.SellHousesPayout(unitCost, quantity, pct)
		return ledger.Transaction{
			From:        model.Bank(),
			To:          model.PlayerAccount(playerID),
			Amount:      payout,
			Type:        model.EntrySellHouses,
			Description: fmt.Sprintf("Sold %d house(s)/hotel(s) for $%d (%d%% of cost)", quantity, payout, pct),
		}
	})
}

// Mortgage pays a player the mortgage value from the bank.
func (s *GameService) Mortgage(ctx context.Context, gameID, playerID string, amount int64) (*model.Game, error) {
	return s.applyTransaction(ctx, gameID, ledger.Transaction{
		From:        model.Bank(),
		To:          model.PlayerAccount(playerID),
		Amount:      amount,
		Type:        model.EntryMortgage,
		Description: fmt.Sprintf("Mortgaged property for $%d", amount),
	})
}

// Unmortgage charges a player to lift a mortgage; routes like a purchase.
func (s *GameService) Unmortgage(ctx context.Context, gameID, playerID string, amount int64) (*model.Game, error) {
	return s.withSettings(ctx, gameID, func(settings model.Settings) ledger.Transaction {
		return ledger.Transaction{
			From:        model.PlayerAccount(playerID),
			To:          policy.PurchaseDestination(settings),
			Amount:      amount,
			Type:        model.EntryUnmortgage,
			Description: fmt.Sprintf("Unmortgaged property for $%d", amount),
		}
	})
}

// PayJailFee charges a player the configured jail fee. The fee routes to
// the pot whenever free parking is enabled.
func (s *GameService) PayJailFee(ctx context.Context, gameID, playerID string) (*model.Game, error) {
	return s.withSettings(ctx, gameID, func(settings model.Settings) ledger.Transaction {
		fee := settings.JailFee
		if fee <= 0 {
			fee = s.defaults.JailFee
		}
		return ledger.Transaction{
			From:        model.PlayerAccount(playerID),
			To:          policy.PaymentDestination(settings),
			Amount:      fee,
			Type:        model.EntryJailPayment,
			Description: fmt.Sprintf("Jail fee payment of $%d", fee),
		}
	})
}

// PayTax charges a player a tax. Routes like a jail fee.
func (s *GameService) PayTax(ctx context.Context, gameID, playerID string, amount int64) (*model.Game, error) {
	return s.withSettings(ctx, gameID, func(settings model.Settings) ledger.Transaction {
		return ledger.Transaction{
			From:        model.PlayerAccount(playerID),
			To:          policy.PaymentDestination(settings),
			Amount:      amount,
			Type:        model.EntryTaxPayment,
			Description: fmt.Sprintf("Tax payment of $%d", amount),
		}
	})
}

// Auction charges a player for an auction win. Auction money always goes
// to the bank.
func (s *GameService) Auction(ctx context.Context, gameID, playerID string, amount int64) (*model.Game, error) {
	return s.applyTransaction(ctx, gameID, ledger.Transaction{
		From:        model.PlayerAccount(playerID),
		To:          model.Bank(),
		Amount:      amount,
		Type:        model.EntryAuction,
		Description: fmt.Sprintf("Auction purchase of $%d", amount),
	})
}

// MultiplayerPayout moves amount between one player and every other player.
// When receiving is true each other player pays the selected player,
// otherwise the selected player pays each of them. One history entry is
// appended per counterparty, all within a single serialized cycle.
func (s *GameService) MultiplayerPayout(ctx context.Context, gameID, playerID string, amount int64, receiving bool) (*model.Game, error) {
	return s.mutate(ctx, gameID, func(g *model.Game) (*model.Game, error) {
		selected := g.PlayerByID(playerID)
		if selected == nil {
			return nil, ledger.ErrAccountNotFound
		}
		next := g
		for _, other := range g.Players {
			if other.ID == playerID {
				continue
			}
			from, to := other, *selected
			if !receiving {
				from, to = *selected, other
			}
			applied, err := ledger.Apply(next, ledger.Transaction{
				From:        model.PlayerAccount(from.ID),
				To:          model.PlayerAccount(to.ID),
				Amount:      amount,
				Type:        model.EntryMultiplayerPayout,
				Description: fmt.Sprintf("Multi-player payout: %s paid $%d to %s", from.Name, amount, to.Name),
			}, nowUTC())
			if err != nil {
				return nil, err
			}
			next = applied
		}
		return next, nil
	})
}

// withSettings loads the game once and builds the transaction from its
// current settings, so routing decisions always use the persisted rules
// rather than values captured earlier.
func (s *GameService) withSettings(ctx context.Context, gameID string, build func(model.Settings) ledger.Transaction) (*model.Game, error) {
	return s.mutate(ctx, gameID, func(g *model.Game) (*model.Game, error) {
		return ledger.Apply(g, build(g.Settings), nowUTC())
	})
}
