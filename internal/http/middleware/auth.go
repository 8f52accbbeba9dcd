package middleware

import (
	"errors"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"linguaflow/internal/auth"
	"linguaflow/internal/config"
	dbpkg "linguaflow/internal/db"
	httpctx "linguaflow/internal/http/ctx"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "token"

// APIKeyHeader is the header carrying the B2B API key.
const APIKeyHeader = "X-API-Key"

func jsonError(ctx *fasthttp.RequestCtx, code int, msg string) {
	ctx.SetStatusCode(code)
	ctx.SetContentType("application/json")
	ctx.SetBodyString(`{"error":"` + msg + `"}`)
}

// SessionAuth requires a valid session cookie. Absent cookie is 401,
// present but invalid or expired is 403. On success the account row is
// loaded and set on the request context.
func SessionAuth(db *gorm.DB, cfg *config.Config) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			cookie := ctx.Request.Header.Cookie(SessionCookie)
			if len(cookie) == 0 {
				jsonError(ctx, fasthttp.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := auth.ParseToken([]byte(cfg.JWTSecret), string(cookie))
			if err != nil {
				jsonError(ctx, fasthttp.StatusForbidden, "Forbidden")
				return
			}

			user, err := dbpkg.FindUserByID(db, claims.UserID)
			if err != nil {
				if errors.Is(err, dbpkg.ErrUserNotFound) {
					jsonError(ctx, fasthttp.StatusForbidden, "Forbidden")
					return
				}
				jsonError(ctx, fasthttp.StatusInternalServerError, "Server error")
				return
			}

			httpctx.SetUser(ctx, user)
			next(ctx)
		}
	}
}

// APIKeyAuth requires a valid X-API-Key header. Missing header is 401,
// unknown key is 403.
func APIKeyAuth(db *gorm.DB) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			key := ctx.Request.Header.Peek(APIKeyHeader)
			if len(key) == 0 {
				jsonError(ctx, fasthttp.StatusUnauthorized, "API Key required")
				return
			}

			user, err := dbpkg.FindUserByAPIKey(db, string(key))
			if err != nil {
				if errors.Is(err, dbpkg.ErrUserNotFound) {
					jsonError(ctx, fasthttp.StatusForbidden, "Invalid API Key")
					return
				}
				jsonError(ctx, fasthttp.StatusInternalServerError, "Server error")
				return
			}

			httpctx.SetUser(ctx, user)
			next(ctx)
		}
	}
}

// OptionalSessionAuth attempts cookie verification but never rejects:
// a missing or invalid cookie just means the caller proceeds as a
// guest. Guests bypass metering entirely on these routes, so this is a
// deliberate product policy and a known abuse vector for the paid
// operations behind it.
func OptionalSessionAuth(db *gorm.DB, cfg *config.Config) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			cookie := ctx.Request.Header.Cookie(SessionCookie)
			if len(cookie) == 0 {
				next(ctx)
				return
			}

			claims, err := auth.ParseToken([]byte(cfg.JWTSecret), string(cookie))
			if err != nil {
				next(ctx)
				return
			}

			user, err := dbpkg.FindUserByID(db, claims.UserID)
			if err != nil {
				next(ctx)
				return
			}

			httpctx.SetUser(ctx, user)
			next(ctx)
		}
	}
}
