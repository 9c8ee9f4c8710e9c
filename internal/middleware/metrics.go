package middleware

import (
	"time"

	"github.com/valyala/fasthttp"
)

// RequestRecorder receives one observation per served request.
type RequestRecorder interface {
	RecordHTTPRequest(method string, statusCode int, duration time.Duration)
}

func Metrics(recorder RequestRecorder) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		if recorder == nil {
			return next
		}
		return func(ctx *fasthttp.RequestCtx) {
			started := time.Now()
			next(ctx)
			recorder.RecordHTTPRequest(string(ctx.Method()), ctx.Response.StatusCode(), time.Since(started))
		}
	}
}
