// Package model defines the data models for the board-game banker.
package model

import "time"

// Player represents one participant in a game. Balances are signed:
// the banker never enforces solvency, so a balance may go negative.
type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Color   Color  `json:"color"`
	Balance int64  `json:"balance"`
}

// Game is the complete state of one board-game session. It is persisted
// as a single document after every mutation.
type Game struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Players        []Player  `json:"players"`
	FreeParkingPot int64     `json:"free_parking_pot"`
	Notes          string    `json:"notes"`
	Settings       Settings  `json:"settings"`
	History        []Entry   `json:"transaction_history"`
	UpdatedDate    time.Time `json:"updated_date"`
}

// PlayerByID returns the player with the given id, or nil if absent.
func (g *Game) PlayerByID(id string) *Player {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i]
		}
	}
	return nil
}

// Settings holds the house rules for a game. They are replaced wholesale
// on a settings update.
type Settings struct {
	FreeParkingEnabled  bool            `json:"free_parking_enabled"`
	FreeParkingMode     FreeParkingMode `json:"free_parking_mode"`
	AutoPotBonus        bool            `json:"auto_pot_bonus"`
	AutoPotBonusAmount  int64           `json:"auto_pot_bonus_amount"`
	HouseSellPercentage int             `json:"house_sell_percentage"`
	JailFee             int64           `json:"jail_fee"`
}

// FreeParkingMode selects which payments feed the Free Parking pot.
type FreeParkingMode string

// Free parking modes.
const (
	// ModeBasic routes only jail fees and tax payments into the pot.
	ModeBasic FreeParkingMode = "basic"
	// ModeAllOut additionally routes purchase-type payments into the pot.
	ModeAllOut FreeParkingMode = "all_out"
)

// Entry is one record in a game's append-only transaction history.
// Entries are never mutated once appended.
type Entry struct {
	Timestamp   time.Time  `json:"timestamp"`
	Type        EntryType  `json:"type"`
	Description string     `json:"description"`
	Amount      int64      `json:"amount"`
	From        AccountRef `json:"from"`
	To          AccountRef `json:"to"`
}

// EntryType categorizes a history entry.
type EntryType string

// Entry types for categorizing balance changes.
const (
	EntryPassGo             EntryType = "pass_go"
	EntryBonus              EntryType = "bonus"
	EntryRent               EntryType = "rent"
	EntryPropertyPurchase   EntryType = "property_purchase"
	EntryHousePurchase      EntryType = "house_purchase"
	EntrySellHouses         EntryType = "sell_houses"
	EntryMortgage           EntryType = "mortgage"
	EntryUnmortgage         EntryType = "unmortgage"
	EntryJailPayment        EntryType = "jail_payment"
	EntryTaxPayment         EntryType = "tax_payment"
	EntryAuction            EntryType = "auction"
	EntryMultiplayerPayout  EntryType = "multiplayer_payout"
	EntryOther              EntryType = "other"
	EntryFreeParkingCollect EntryType = "free_parking_collect"
	EntryFreeParkingAdd     EntryType = "free_parking_add"
	EntryPlayerAdded        EntryType = "player_added"
	EntryPlayerRemoved      EntryType = "player_removed"
	EntryPlayerDistributed  EntryType = "player_removed_distribute"
)

// Color is one of the 20 fixed token colors. Each player in a game
// holds a distinct color.
type Color string

// Token colors.
const (
	ColorRed     Color = "red"
	ColorOrange  Color = "orange"
	ColorAmber   Color = "amber"
	ColorYellow  Color = "yellow"
	ColorLime    Color = "lime"
	ColorGreen   Color = "green"
	ColorTeal    Color = "teal"
	ColorCyan    Color = "cyan"
	ColorSky     Color = "sky"
	ColorBlue    Color = "blue"
	ColorIndigo  Color = "indigo"
	ColorPurple  Color = "purple"
	ColorFuchsia Color = "fuchsia"
	ColorPink    Color = "pink"
	ColorRose    Color = "rose"
	ColorBrown   Color = "brown"
	ColorMaroon  Color = "maroon"
	ColorWhite   Color = "white"
	ColorGray    Color = "gray"
	ColorBlack   Color = "black"
)

// AllColors lists every valid token color.
func AllColors() []Color {
	return []Color{
		ColorRed, ColorOrange, ColorAmber, ColorYellow, ColorLime,
		ColorGreen, ColorTeal, ColorCyan, ColorSky, ColorBlue,
		ColorIndigo, ColorPurple, ColorFuchsia, ColorPink, ColorRose,
		ColorBrown, ColorMaroon, ColorWhite, ColorGray, ColorBlack,
	}
}

// Valid reports whether c is one of the fixed token colors.
func (c Color) Valid() bool {
	for _, v := range AllColors() {
		if c == v {
			return true
		}
	}
	return false
}
