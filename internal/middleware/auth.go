package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase/account"
)

const profileKey = "current_profile"

// AuthState is the part of the account context the guards read.
type AuthState interface {
	Snapshot() account.Snapshot
}

// RequireSession rejects requests while the device is signed out. A bearer
// token, when sent, must be the device session's access token.
func RequireSession(state AuthState, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if _, ok := authorize(ctx, state, logger); !ok {
				return
			}
			next(ctx)
		}
	}
}

// RequireProfile additionally requires the provisioned profile and attaches
// it to the request for ProfileFrom.
func RequireProfile(state AuthState, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			snap, ok := authorize(ctx, state, logger)
			if !ok {
				return
			}
			if snap.Profile == nil {
				reject(ctx, domain.ErrNoProfile)
				return
			}
			ctx.SetUserValue(profileKey, snap.Profile)
			next(ctx)
		}
	}
}

// ProfileFrom returns the profile attached by RequireProfile.
func ProfileFrom(ctx *fasthttp.RequestCtx) *domain.Profile {
	p, _ := ctx.UserValue(profileKey).(*domain.Profile)
	return p
}

func authorize(ctx *fasthttp.RequestCtx, state AuthState, logger *zap.Logger) (account.Snapshot, bool) {
	snap := state.Snapshot()
	if !snap.IsLoggedIn || snap.Session == nil {
		reject(ctx, domain.ErrUnauthorized)
		return snap, false
	}
	if token := extractToken(ctx); token != "" && token != snap.Session.AccessToken {
		logger.Warn("bearer token does not match device session", zap.ByteString("path", ctx.Path()))
		reject(ctx, domain.ErrUnauthorized)
		return snap, false
	}
	return snap, true
}

func reject(ctx *fasthttp.RequestCtx, err *domain.Error) {
	body, _ := json.Marshal(transport.NewError(err, nil))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(http.StatusUnauthorized)
	ctx.SetBody(body)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
