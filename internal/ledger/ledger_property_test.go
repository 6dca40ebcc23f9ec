// Property-based tests for the transaction engine.
package ledger

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"board-banker/internal/model"
)

// totalMoney sums every player balance plus the pot.
func totalMoney(g *model.Game) int64 {
	total := g.FreeParkingPot
	for _, p := range g.Players {
		total += p.Balance
	}
	return total
}

func drawGame(t *rapid.T, autoBonus bool) *model.Game {
	n := rapid.IntRange(2, 8).Draw(t, "playerCount")
	players := make([]model.Player, n)
	colors := model.AllColors()
	for i := 0; i < n; i++ {
		players[i] = model.Player{
			ID:      rapid.StringMatching(`p[0-9]{4}`).Draw(t, "playerID") + string(rune('a'+i)),
			Name:    "Player",
			Color:   colors[i],
			Balance: rapid.Int64Range(-1000, 100000).Draw(t, "balance"),
		}
	}
	return &model.Game{
		ID:             "g",
		Players:        players,
		FreeParkingPot: rapid.Int64Range(0, 5000).Draw(t, "pot"),
		Settings: model.Settings{
			FreeParkingEnabled: true,
			FreeParkingMode:    model.ModeBasic,
			AutoPotBonus:       autoBonus,
			AutoPotBonusAmount: rapid.Int64Range(1, 2000).Draw(t, "bonus"),
		},
	}
}

// TestConservationWithoutBankLegs checks that any transfer between two
// tracked accounts (players or pot, no bank leg, no refill) conserves the
// total of player balances plus pot.
func TestConservationWithoutBankLegs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := drawGame(t, false)
		amount := rapid.Int64Range(1, 10000).Draw(t, "amount")

		fromIdx := rapid.IntRange(0, len(g.Players)-1).Draw(t, "fromIdx")
		toIdx := rapid.IntRange(0, len(g.Players)-1).Filter(func(i int) bool {
			return i != fromIdx
		}).Draw(t, "toIdx")

		accounts := []model.AccountRef{
			model.PlayerAccount(g.Players[fromIdx].ID),
			model.PlayerAccount(g.Players[toIdx].ID),
			model.Pot(),
		}
		from := accounts[rapid.IntRange(0, 1).Draw(t, "fromPick")]
		to := accounts[rapid.IntRange(1, 2).Draw(t, "toPick")]
		if from == to {
			return
		}

		before := totalMoney(g)
		next, err := Apply(g, Transaction{
			From:   from,
			To:     to,
			Amount: amount,
			Type:   model.EntryOther,
		}, time.Now())
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		if after := totalMoney(next); after != before {
			t.Fatalf("Total money not conserved: before=%d, after=%d", before, after)
		}
	})
}

// TestBankTransferChangesOneBalance checks that a bank leg adjusts exactly
// one player by the amount and leaves the pot untouched.
func TestBankTransferChangesOneBalance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := drawGame(t, false)
		amount := rapid.Int64Range(1, 10000).Draw(t, "amount")
		idx := rapid.IntRange(0, len(g.Players)-1).Draw(t, "idx")
		toPlayer := rapid.Bool().Draw(t, "toPlayer")

		player := g.Players[idx]
		tx := Transaction{
			From:   model.Bank(),
			To:     model.PlayerAccount(player.ID),
			Amount: amount,
			Type:   model.EntryBonus,
		}
		expected := player.Balance + amount
		if !toPlayer {
			tx.From, tx.To = tx.To, tx.From
			expected = player.Balance - amount
		}

		next, err := Apply(g, tx, time.Now())
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		if got := next.PlayerByID(player.ID).Balance; got != expected {
			t.Fatalf("Balance mismatch: expected %d, got %d", expected, got)
		}
		if next.FreeParkingPot != g.FreeParkingPot {
			t.Fatalf("Pot changed on a bank transfer: %d -> %d", g.FreeParkingPot, next.FreeParkingPot)
		}
		for _, p := range next.Players {
			if p.ID != player.ID && p.Balance != g.PlayerByID(p.ID).Balance {
				t.Fatalf("Unrelated player %s changed", p.ID)
			}
		}
	})
}

// TestRefillOverridesDeficit checks that draining the pot to or below zero
// with the auto bonus on always lands the pot exactly on the bonus amount,
// however deep the raw subtraction would have gone.
func TestRefillOverridesDeficit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := drawGame(t, true)
		// Drain at least the whole pot.
		amount := g.FreeParkingPot + rapid.Int64Range(0, 10000).Draw(t, "overdraw")
		if amount == 0 {
			return
		}

		next, err := Apply(g, Transaction{
			From:   model.Pot(),
			To:     model.PlayerAccount(g.Players[0].ID),
			Amount: amount,
			Type:   model.EntryOther,
		}, time.Now())
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		if next.FreeParkingPot != g.Settings.AutoPotBonusAmount {
			t.Fatalf("Pot not refilled to bonus: expected %d, got %d",
				g.Settings.AutoPotBonusAmount, next.FreeParkingPot)
		}
	})
}

// TestApplyAppendsExactlyOneEntry checks the append-only history contract.
func TestApplyAppendsExactlyOneEntry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := drawGame(t, rapid.Bool().Draw(t, "autoBonus"))
		amount := rapid.Int64Range(1, 10000).Draw(t, "amount")

		next, err := Apply(g, Transaction{
			From:   model.Bank(),
			To:     model.PlayerAccount(g.Players[0].ID),
			Amount: amount,
			Type:   model.EntryBonus,
		}, time.Now())
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		if len(next.History) != len(g.History)+1 {
			t.Fatalf("Expected exactly one appended entry, got %d -> %d",
				len(g.History), len(next.History))
		}
	})
}
