package handlers

import (
	"encoding/json"

	"github.com/valyala/fasthttp"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"linguaflow/internal/config"
	dbpkg "linguaflow/internal/db"
)

type topUpRequest struct {
	// Amount is the nominal currency amount "paid". Converted to
	// credits at the configured rate.
	Amount int64 `json:"amount"`
}

// TopUp adds credits to the signed-in account at the configured rate.
//
// STUB: no payment verification happens here. The frontend plays a
// payment animation and calls this endpoint; wiring a real gateway
// means verifying the charge before crediting.
func TopUp(db *gorm.DB, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		var req topUpRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			jsonError(ctx, fasthttp.StatusBadRequest, "Invalid JSON body")
			return
		}
		if req.Amount <= 0 {
			jsonError(ctx, fasthttp.StatusBadRequest, "Amount must be positive")
			return
		}

		creditsToAdd := req.Amount * cfg.TopUpRate
		balance, err := dbpkg.Credit(db, user.ID, creditsToAdd, "Top-up", datatypes.JSONMap{
			"operation": "credits.topup",
			"amount":    req.Amount,
			"rate":      cfg.TopUpRate,
		})
		if err != nil {
			jsonError(ctx, fasthttp.StatusInternalServerError, "Server error")
			return
		}

		observeCredits(dbpkg.TxTypeCredit, creditsToAdd)

		jsonResponse(ctx, map[string]any{"success": true, "credits": balance})
	}
}

// Transactions returns the signed-in account's recent ledger entries,
// newest first.
func Transactions(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		entries, err := dbpkg.ListTransactions(db, user.ID, 50)
		if err != nil {
			jsonError(ctx, fasthttp.StatusInternalServerError, "Server error")
			return
		}

		type entry struct {
			ID          uint   `json:"id"`
			Amount      int64  `json:"amount"`
			Type        string `json:"type"`
			Description string `json:"description"`
			CreatedAt   string `json:"created_at"`
		}
		out := make([]entry, 0, len(entries))
		for _, e := range entries {
			out = append(out, entry{
				ID:          e.ID,
				Amount:      e.Amount,
				Type:        e.Type,
				Description: e.Description,
				CreatedAt:   e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			})
		}

		jsonResponse(ctx, map[string]any{"transactions": out})
	}
}
