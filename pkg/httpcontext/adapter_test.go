package httpcontext

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/taskboard/pkg/logger"
)

func TestAttach_PropagatesRequestID(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set("X-Request-ID", "req-42")
	ctx.Request.Header.SetUserAgent("taskboard-test")

	stdCtx, cancel := NewAdapter(time.Second).Attach(&ctx)
	defer cancel()

	assert.Equal(t, "req-42", appLogger.RequestIDFromContext(stdCtx))
	assert.Equal(t, "req-42", string(ctx.Response.Header.Peek("X-Request-ID")))
	assert.Equal(t, "taskboard-test", stdCtx.Value(KeyUserAgent))

	deadline, ok := stdCtx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 100*time.Millisecond)
}

func TestAttach_GeneratesRequestID(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set("X-Request-ID", strings.Repeat("x", maxRequestIDLength+1))

	stdCtx, cancel := NewAdapter(0).Attach(&ctx)
	defer cancel()

	id := appLogger.RequestIDFromContext(stdCtx)
	assert.Len(t, id, 36)
	assert.Equal(t, id, string(ctx.Response.Header.Peek("X-Request-ID")))
}
