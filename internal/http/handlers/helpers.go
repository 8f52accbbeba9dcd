package handlers

import (
	"encoding/json"

	"github.com/valyala/fasthttp"

	dbpkg "linguaflow/internal/db"
	httpctx "linguaflow/internal/http/ctx"
)

// MustUser returns the current user from context, or sends 401 and
// returns (nil, false).
func MustUser(ctx *fasthttp.RequestCtx) (*dbpkg.User, bool) {
	user, ok := httpctx.UserFromCtx(ctx)
	if !ok {
		jsonError(ctx, fasthttp.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return user, true
}

func jsonResponse(ctx *fasthttp.RequestCtx, data any) {
	ctx.SetContentType("application/json")
	body, _ := json.Marshal(data)
	ctx.SetBody(body)
}

func jsonError(ctx *fasthttp.RequestCtx, code int, msg string) {
	ctx.SetStatusCode(code)
	ctx.SetContentType("application/json")
	body, _ := json.Marshal(map[string]string{"error": msg})
	ctx.SetBody(body)
}

// userSummary is the account shape returned to the frontend. The
// password hash never leaves the store layer.
type userSummary struct {
	ID      uint   `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Credits int64  `json:"credits"`
	APIKey  string `json:"api_key"`
}

func summarize(u *dbpkg.User) userSummary {
	return userSummary{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Credits: u.Credits,
		APIKey:  u.APIKey,
	}
}
