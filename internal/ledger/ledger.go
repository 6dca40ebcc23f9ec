// Package ledger implements the transaction engine that moves money between
// the bank, the shared pot, and player balances. Applying a transaction is a
// pure in-memory state transition: the full next snapshot is computed before
// anything is written, so a validation failure never leaves a partial update.
package ledger

import (
	"errors"
	"time"

	"board-banker/internal/model"
	"board-banker/internal/policy"
)

// Ledger errors. All are detected before any mutation is applied.
var (
	ErrInvalidAmount   = errors.New("invalid amount: must be positive")
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidAccount  = errors.New("invalid account reference")
)

// Transaction is a fully-formed intent to move Amount from From to To.
type Transaction struct {
	From        model.AccountRef
	To          model.AccountRef
	Amount      int64
	Type        model.EntryType
	Description string
}

// resolve validates that ref can act as a live account in g. The bank and
// the pot always resolve; a player reference must match an existing player;
// the multiple marker is never a live account.
func resolve(g *model.Game, ref model.AccountRef) error {
	switch ref.Kind() {
	case model.KindBank, model.KindPot:
		return nil
	case model.KindPlayer:
		if g.PlayerByID(ref.PlayerID()) == nil {
			return ErrAccountNotFound
		}
		return nil
	default:
		return ErrInvalidAccount
	}
}

// Apply executes tx against g and returns the next game snapshot with
// balances, pot, and history updated. g is not modified.
//
// Bank legs change no stored balance. When the source is the pot and the
// drain leaves it at or below zero, the auto-refill rule restocks it to the
// configured bonus amount, discarding any deficit; the check runs at drain
// time, before the destination leg is applied. A same-account transfer nets
// to zero and still logs. Balances may go negative; the engine enforces no
// solvency check.
func Apply(g *model.Game, tx Transaction, now time.Time) (*model.Game, error) {
	if tx.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := resolve(g, tx.From); err != nil {
		return nil, err
	}
	if err := resolve(g, tx.To); err != nil {
		return nil, err
	}

	next := *g
	next.Players = make([]model.Player, len(g.Players))
	copy(next.Players, g.Players)

	if tx.From.IsPlayer() {
		next.PlayerByID(tx.From.PlayerID()).Balance -= tx.Amount
	} else if tx.From.IsPot() {
		next.FreeParkingPot -= tx.Amount
		if policy.ShouldAutoRefill(next.Settings, next.FreeParkingPot) {
			next.FreeParkingPot = policy.AutoRefillAmount(next.Settings)
		}
	}

	if tx.To.IsPlayer() {
		next.PlayerByID(tx.To.PlayerID()).Balance += tx.Amount
	} else if tx.To.IsPot() {
		next.FreeParkingPot += tx.Amount
	}

	next.History = AppendEntry(g.History, model.Entry{
		Timestamp:   now,
		Type:        tx.Type,
		Description: tx.Description,
		Amount:      tx.Amount,
		From:        tx.From,
		To:          tx.To,
	})
	return &next, nil
}

// AppendEntry appends without aliasing the source history slice, keeping
// prior snapshots immutable.
func AppendEntry(history []model.Entry, e model.Entry) []model.Entry {
	out := make([]model.Entry, len(history), len(history)+1)
	copy(out, history)
	return append(out, e)
}
