package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase/account"
)

type fixedState account.Snapshot

func (s fixedState) Snapshot() account.Snapshot { return account.Snapshot(s) }

func signedIn(profile *domain.Profile) fixedState {
	return fixedState{
		Session:    &domain.Session{AccessToken: "access-1", User: domain.SessionUser{ID: "u1"}},
		IsLoggedIn: true,
		Profile:    profile,
	}
}

func serve(h fasthttp.RequestHandler, authorization string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/v1/tasks")
	if authorization != "" {
		ctx.Request.Header.Set("Authorization", authorization)
	}
	h(&ctx)
	return &ctx
}

func okHandler(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(fasthttp.StatusOK) }

func TestRequireSession(t *testing.T) {
	guard := RequireSession(fixedState{}, nil)
	ctx := serve(guard(okHandler), "")
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `"code":"UNAUTHORIZED"`)

	guard = RequireSession(signedIn(nil), nil)
	assert.Equal(t, fasthttp.StatusOK, serve(guard(okHandler), "").Response.StatusCode())
	assert.Equal(t, fasthttp.StatusOK, serve(guard(okHandler), "Bearer access-1").Response.StatusCode())
	assert.Equal(t, fasthttp.StatusUnauthorized, serve(guard(okHandler), "Bearer forged").Response.StatusCode())
}

func TestRequireProfile(t *testing.T) {
	ctx := serve(RequireProfile(signedIn(nil), nil)(okHandler), "")
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "no profile for current session")

	profile := &domain.Profile{ID: 5, Username: "bob"}
	var seen *domain.Profile
	ctx = serve(RequireProfile(signedIn(profile), nil)(func(ctx *fasthttp.RequestCtx) {
		seen = ProfileFrom(ctx)
	}), "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, profile, seen)
}

type requestRecorder struct {
	method string
	status int
}

func (r *requestRecorder) RecordHTTPRequest(method string, status int, _ time.Duration) {
	r.method, r.status = method, status
}

func TestMetrics(t *testing.T) {
	rec := &requestRecorder{}
	h := Metrics(rec)(func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(fasthttp.StatusTeapot) })

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	h(&ctx)

	assert.Equal(t, "POST", rec.method)
	assert.Equal(t, fasthttp.StatusTeapot, rec.status)
}
