package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
)

type noStatus struct{}

func (noStatus) GetStatus() monitor.Status { return monitor.Status{} }

func TestNew_GuardsProtectedRoutes(t *testing.T) {
	denied := func(fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(fasthttp.StatusUnauthorized) }
	}
	r := New(Handlers{
		Auth:    &apiHandler.AuthHandler{},
		Account: &apiHandler.AccountHandler{},
		Profile: &apiHandler.ProfileHandler{},
		Task:    &apiHandler.TaskHandler{},
		Health:  apiHandler.NewHealthHandler(noStatus{}, nil, nil),
		Metrics: func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(fasthttp.StatusOK) },
	}, Guards{Session: denied, Profile: denied})

	cases := []struct {
		method string
		path   string
		status int
	}{
		{fasthttp.MethodGet, "/metrics", fasthttp.StatusOK},
		{fasthttp.MethodGet, "/health", fasthttp.StatusServiceUnavailable},
		{fasthttp.MethodGet, "/api/v1/tasks", fasthttp.StatusUnauthorized},
		{fasthttp.MethodPost, "/api/v1/tasks", fasthttp.StatusUnauthorized},
		{fasthttp.MethodPost, "/api/v1/tasks/refresh", fasthttp.StatusUnauthorized},
		{fasthttp.MethodPut, "/api/v1/tasks/1/assign", fasthttp.StatusUnauthorized},
		{fasthttp.MethodPut, "/api/v1/tasks/1/complete", fasthttp.StatusUnauthorized},
		{fasthttp.MethodGet, "/api/v1/profiles", fasthttp.StatusUnauthorized},
		{fasthttp.MethodPut, "/api/v1/profile/push-token", fasthttp.StatusUnauthorized},
		{fasthttp.MethodPost, "/api/v1/auth/refresh", fasthttp.StatusUnauthorized},
		{fasthttp.MethodGet, "/api/v1/unknown", fasthttp.StatusNotFound},
	}
	for _, tc := range cases {
		var ctx fasthttp.RequestCtx
		ctx.Request.Header.SetMethod(tc.method)
		ctx.Request.SetRequestURI(tc.path)
		r.Handler(&ctx)
		assert.Equal(t, tc.status, ctx.Response.StatusCode(), tc.method+" "+tc.path)
	}
}
