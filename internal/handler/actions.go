package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"board-banker/internal/ledger"
	"board-banker/internal/model"
)

// actionRequest is the envelope for every game-table action. Which fields
// are read depends on the action; unused fields are ignored.
type actionRequest struct {
	Action      string `json:"action"`
	PlayerID    string `json:"player_id"`
	FromID      string `json:"from_id"`
	ToID        string `json:"to_id"`
	From        string `json:"from"`
	To          string `json:"to"`
	Amount      int64  `json:"amount"`
	UnitCost    int64  `json:"unit_cost"`
	Quantity    int64  `json:"quantity"`
	Receiving   bool   `json:"receiving"`
	Description string `json:"description"`
}

// action dispatches a table action to the matching service flow. The
// routing of each payment (bank vs pot) is decided inside the service
// using the game's current house rules.
func (h *Handler) action(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	gameID := r.PathValue("id")

	var (
		game *model.Game
		err  error
	)
	switch req.Action {
	case "pass_go":
		game, err = h.games.PassGo(ctx, gameID, req.PlayerID)
	case "bonus":
		game, err = h.games.Bonus(ctx, gameID, req.PlayerID, req.Amount)
	case "rent":
		game, err = h.games.PayRent(ctx, gameID, req.FromID, req.ToID, req.Amount)
	case "property_purchase":
		game, err = h.games.PurchaseProperty(ctx, gameID, req.PlayerID, req.Amount)
	case "house_purchase":
		game, err = h.games.PurchaseHouses(ctx, gameID, req.PlayerID, req.UnitCost, req.Quantity)
	case "sell_houses":
		game, err = h.games.SellHouses(ctx, gameID, req.PlayerID, req.UnitCost, req.Quantity)
	case "mortgage":
		game, err = h.games.Mortgage(ctx, gameID, req.PlayerID, req.Amount)
	case "unmortgage":
		game, err = h.games.Unmortgage(ctx, gameID, req.PlayerID, req.Amount)
	case "jail_payment":
		game, err = h.games.PayJailFee(ctx, gameID, req.PlayerID)
	case "tax_payment":
		game, err = h.games.PayTax(ctx, gameID, req.PlayerID, req.Amount)
	case "auction":
		game, err = h.games.Auction(ctx, gameID, req.PlayerID, req.Amount)
	case "multiplayer_payout":
		game, err = h.games.MultiplayerPayout(ctx, gameID, req.PlayerID, req.Amount, req.Receiving)
	case "free_parking_collect":
		game, err = h.games.CollectPot(ctx, gameID, req.PlayerID)
	case "free_parking_add":
		game, err = h.games.AddToPot(ctx, gameID, req.PlayerID, req.Amount)
	case "other":
		game, err = h.other(ctx, gameID, req)
	default:
		respondError(w, http.StatusBadRequest, "unknown action")
		return
	}

	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, game)
}

// other applies a custom transaction between any two accounts.
func (h *Handler) other(ctx context.Context, gameID string, req actionRequest) (*model.Game, error) {
	from, err := model.ParseAccountRef(req.From)
	if err != nil {
		return nil, ledger.ErrInvalidAccount
	}
	to, err := model.ParseAccountRef(req.To)
	if err != nil {
		return nil, ledger.ErrInvalidAccount
	}
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Custom transaction of $%d", req.Amount)
	}
	return h.games.ApplyTransaction(ctx, gameID, ledger.Transaction{
		From:        from,
		To:          to,
		Amount:      req.Amount,
		Type:        model.EntryOther,
		Description: description,
	})
}
