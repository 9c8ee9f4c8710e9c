package handler

import (
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/usecase/account"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

type ProfileHandler struct {
	baseHandler
	tasks   *taskUC.UseCase
	account *account.Context
}

func NewProfileHandler(tasks *taskUC.UseCase, acc *account.Context, adapter *httpcontext.Adapter, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		baseHandler: newBaseHandler(adapter, logger),
		tasks:       tasks,
		account:     acc,
	}
}

// @Summary List profiles ordered by username
// @Tags profile
// @Router /api/v1/profiles [get]
func (h *ProfileHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	profiles, err := h.tasks.Profiles(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, profiles)
}

// @Summary Register the device push token on the current profile
// @Tags profile
// @Router /api/v1/profile/push-token [put]
func (h *ProfileHandler) RegisterPushToken(ctx *fasthttp.RequestCtx) {
	var req transport.PushTokenRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.account.RegisterPushToken(stdCtx, strings.TrimSpace(req.Token)); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.account.Snapshot().Profile)
}
