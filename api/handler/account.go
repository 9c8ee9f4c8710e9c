package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/usecase/account"
)

type AccountHandler struct {
	baseHandler
	account *account.Context
}

func NewAccountHandler(acc *account.Context, adapter *httpcontext.Adapter, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		baseHandler: newBaseHandler(adapter, logger),
		account:     acc,
	}
}

// @Summary Current auth state
// @Tags account
// @Router /api/v1/me [get]
func (h *AccountHandler) Me(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.account.Snapshot())
}
