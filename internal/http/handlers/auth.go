package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"linguaflow/internal/auth"
	"linguaflow/internal/config"
	dbpkg "linguaflow/internal/db"
	appmw "linguaflow/internal/http/middleware"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func setSessionCookie(ctx *fasthttp.RequestCtx, token string, ttl time.Duration) {
	var c fasthttp.Cookie
	c.SetKey(appmw.SessionCookie)
	c.SetValue(token)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetExpire(time.Now().Add(ttl))
	ctx.Response.Header.SetCookie(&c)
}

// Register creates an account with the configured signup bonus, records
// the bonus as the account's first ledger entry, and signs the caller in.
func Register(db *gorm.DB, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var req registerRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			jsonError(ctx, fasthttp.StatusBadRequest, "Invalid JSON body")
			return
		}
		if req.Email == "" || req.Password == "" {
			jsonError(ctx, fasthttp.StatusBadRequest, "Email and password required")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			jsonError(ctx, fasthttp.StatusInternalServerError, "Server error")
			return
		}

		user := &dbpkg.User{
			Email:        req.Email,
			PasswordHash: string(hash),
			Name:         req.Name,
			Credits:      cfg.SignupBonus,
			APIKey:       dbpkg.NewAPIKey(),
		}

		// The starting balance and its ledger entry are written
		// together so the audit trail covers every credit the account
		// ever held.
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := dbpkg.CreateUser(tx, user); err != nil {
				return err
			}
			return tx.Create(&dbpkg.Transaction{
				UserID:      user.ID,
				Amount:      cfg.SignupBonus,
				Type:        dbpkg.TxTypeCredit,
				Description: "Signup bonus",
				Metadata:    datatypes.JSONMap{"operation": "auth.register"},
			}).Error
		})
		if err != nil {
			if errors.Is(err, dbpkg.ErrDuplicateEmail) {
				jsonError(ctx, fasthttp.StatusBadRequest, "Email already exists")
				return
			}
			jsonError(ctx, fasthttp.StatusInternalServerError, "Server error")
			return
		}

		token, err := auth.IssueToken([]byte(cfg.JWTSecret), user.ID, user.Email, cfg.SessionTTL)
		if err != nil {
			jsonError(ctx, fasthttp.StatusInternalServerError, "Server error")
			return
		}
		setSessionCookie(ctx, token, cfg.SessionTTL)

		jsonResponse(ctx, map[string]any{"success": true, "user": summarize(user)})
	}
}

// Login verifies credentials and issues a fresh session cookie. Unknown
// email and wrong password are indistinguishable to the caller.
func Login(db *gorm.DB, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var req loginRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			jsonError(ctx, fasthttp.StatusBadRequest, "Invalid JSON body")
			return
		}

		user, err := dbpkg.FindUserByEmail(db, req.Email)
		if err != nil {
			if errors.Is(err, dbpkg.ErrUserNotFound) {
				jsonError(ctx, fasthttp.StatusUnauthorized, "Invalid credentials")
				return
			}
			jsonError(ctx, fasthttp.StatusInternalServerError, "Server error")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			jsonError(ctx, fasthttp.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := auth.IssueToken([]byte(cfg.JWTSecret), user.ID, user.Email, cfg.SessionTTL)
		if err != nil {
			jsonError(ctx, fasthttp.StatusInternalServerError, "Server error")
			return
		}
		setSessionCookie(ctx, token, cfg.SessionTTL)

		jsonResponse(ctx, map[string]any{"success": true, "user": summarize(user)})
	}
}

// Logout clears the session cookie. Tokens are stateless so nothing is
// revoked server-side.
func Logout() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var c fasthttp.Cookie
		c.SetKey(appmw.SessionCookie)
		c.SetValue("")
		c.SetPath("/")
		// A past expiry is what actually makes browsers drop the
		// cookie; fasthttp does not serialize a negative max-age.
		c.SetExpire(fasthttp.CookieExpireDelete)
		ctx.Response.Header.SetCookie(&c)

		jsonResponse(ctx, map[string]any{"success": true})
	}
}

// Me returns the signed-in account's profile, including its API key so
// the frontend can show it for B2B integration.
func Me() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}
		jsonResponse(ctx, summarize(user))
	}
}
