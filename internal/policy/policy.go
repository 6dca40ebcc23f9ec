// Package policy implements the configurable house rules that decide where
// rule-governed payments route and how the shared pot is replenished.
// Everything here is a pure function over Settings; type-specific routing
// (which leg of a transaction uses which destination) stays with the caller.
package policy

import "board-banker/internal/model"

// Default values applied when a setting is left zero.
const (
	DefaultAutoPotBonus   int64 = 500
	DefaultJailFee        int64 = 50
	DefaultSellPercentage int   = 50
)

// PaymentDestination returns where bank-owed rule payments (jail fees and
// taxes) route: the pot whenever Free Parking is enabled, regardless of
// mode, otherwise the bank.
func PaymentDestination(s model.Settings) model.AccountRef {
	if s.FreeParkingEnabled {
		return model.Pot()
	}
	return model.Bank()
}

// PurchaseDestination returns where purchase-type payments (property
// purchase, house purchase, unmortgage) route: the pot only in all-out
// mode, otherwise the bank.
func PurchaseDestination(s model.Settings) model.AccountRef {
	if s.FreeParkingEnabled && s.FreeParkingMode == model.ModeAllOut {
		return model.Pot()
	}
	return model.Bank()
}

// SellHousesPayout computes the bank payout for selling houses/hotels:
// floor(unitCost * quantity * pct / 100). pct is constrained to 50 or 100
// by Normalize.
func SellHousesPayout(unitCost, quantity int64, pct int) int64 {
	return unitCost * quantity * int64(pct) / 100
}

// AutoRefillAmount returns the pot value after an auto-refill fires.
// A zero configured amount falls back to the default bonus.
func AutoRefillAmount(s model.Settings) int64 {
	if s.AutoPotBonusAmount > 0 {
		return s.AutoPotBonusAmount
	}
	return DefaultAutoPotBonus
}

// ShouldAutoRefill reports whether a pot that has just been drained to
// remaining (<= 0) restocks itself under the current rules.
func ShouldAutoRefill(s model.Settings, remaining int64) bool {
	return remaining <= 0 && s.FreeParkingEnabled && s.AutoPotBonus
}

// SeedPot returns the initial pot value for a new game, or for a game whose
// settings just turned the auto bonus on while the pot sat empty.
func SeedPot(s model.Settings) int64 {
	if s.FreeParkingEnabled && s.AutoPotBonus {
		return AutoRefillAmount(s)
	}
	return 0
}

// Normalize fills zero-valued settings with their defaults and clamps the
// sell percentage to the two supported values.
func Normalize(s model.Settings) model.Settings {
	if s.AutoPotBonusAmount <= 0 {
		s.AutoPotBonusAmount = DefaultAutoPotBonus
	}
	if s.JailFee <= 0 {
		s.JailFee = DefaultJailFee
	}
	if s.HouseSellPercentage != 50 && s.HouseSellPercentage != 100 {
		s.HouseSellPercentage = DefaultSellPercentage
	}
	if s.FreeParkingMode != model.ModeBasic && s.FreeParkingMode != model.ModeAllOut {
		s.FreeParkingMode = model.ModeBasic
	}
	return s
}
