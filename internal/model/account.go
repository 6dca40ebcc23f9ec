package model

import (
	"encoding/json"
	"fmt"
)

// AccountKind discriminates the variants of an AccountRef.
type AccountKind int

// Account kinds.
const (
	// KindBank is the infinite money source/sink. Its balance is not tracked.
	KindBank AccountKind = iota
	// KindPot is the shared Free Parking pot.
	KindPot
	// KindPlayer references a player's balance by id.
	KindPlayer
	// KindMultiple is a terminal marker used only on distribute-on-removal
	// entries. It never resolves to a real account.
	KindMultiple
)

// AccountRef identifies a money source or sink in a transaction: the bank,
// the shared pot, a single player, or the "multiple" marker. It is a closed
// tagged value so that routing code can switch exhaustively on Kind.
type AccountRef struct {
	kind     AccountKind
	playerID string
}

// Bank returns the bank account reference.
func Bank() AccountRef { return AccountRef{kind: KindBank} }

// Pot returns the shared pot account reference.
func Pot() AccountRef { return AccountRef{kind: KindPot} }

// PlayerAccount returns a reference to the player with the given id.
func PlayerAccount(id string) AccountRef {
	return AccountRef{kind: KindPlayer, playerID: id}
}

// Multiple returns the terminal marker used by distribute entries.
func Multiple() AccountRef { return AccountRef{kind: KindMultiple} }

// Kind returns the variant tag.
func (a AccountRef) Kind() AccountKind { return a.kind }

// PlayerID returns the referenced player id. It is empty unless
// Kind is KindPlayer.
func (a AccountRef) PlayerID() string { return a.playerID }

// IsBank reports whether the reference is the bank.
func (a AccountRef) IsBank() bool { return a.kind == KindBank }

// IsPot reports whether the reference is the shared pot.
func (a AccountRef) IsPot() bool { return a.kind == KindPot }

// IsPlayer reports whether the reference is a single player.
func (a AccountRef) IsPlayer() bool { return a.kind == KindPlayer }

// String returns the wire form: "bank", "pot", "multiple", or a player id.
func (a AccountRef) String() string {
	switch a.kind {
	case KindBank:
		return "bank"
	case KindPot:
		return "pot"
	case KindMultiple:
		return "multiple"
	default:
		return a.playerID
	}
}

// ParseAccountRef parses the wire form. Any string other than the reserved
// words is treated as a player id; existence is checked by the ledger, not
// the parser.
func ParseAccountRef(s string) (AccountRef, error) {
	switch s {
	case "bank":
		return Bank(), nil
	case "pot":
		return Pot(), nil
	case "multiple":
		return Multiple(), nil
	case "":
		return AccountRef{}, fmt.Errorf("empty account reference")
	default:
		return PlayerAccount(s), nil
	}
}

// MarshalJSON encodes the reference as its wire string.
func (a AccountRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes the wire string form.
func (a *AccountRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	ref, err := ParseAccountRef(s)
	if err != nil {
		return err
	}
	*a = ref
	return nil
}
