package ctx

import (
	"github.com/valyala/fasthttp"

	dbpkg "linguaflow/internal/db"
)

const UserKey = "user"

// SetUser stashes the authenticated account on the request context.
// Optional-auth routes leave it unset for guests.
func SetUser(ctx *fasthttp.RequestCtx, user *dbpkg.User) {
	ctx.SetUserValue(UserKey, user)
}

// UserFromCtx returns the authenticated account, or (nil, false) when
// the caller is a guest.
func UserFromCtx(ctx *fasthttp.RequestCtx) (*dbpkg.User, bool) {
	v := ctx.UserValue(UserKey)
	if v == nil {
		return nil, false
	}
	user, ok := v.(*dbpkg.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
