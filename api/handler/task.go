package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	appLogger "github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/usecase/account"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

// TaskHandler serves the device's task boards, one per filter so overlapping
// requests for different filters never answer with each other's list. Writes
// invalidate every board so the next read refetches.
type TaskHandler struct {
	baseHandler
	uc      *taskUC.UseCase
	account *account.Context
	boards  map[domain.TaskFilter]*taskUC.Board
}

func NewTaskHandler(uc *taskUC.UseCase, acc *account.Context, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		account:     acc,
		boards: map[domain.TaskFilter]*taskUC.Board{
			domain.FilterAll:      uc.NewBoard(domain.FilterAll, nil),
			domain.FilterAssigned: uc.NewBoard(domain.FilterAssigned, nil),
			domain.FilterCreated:  uc.NewBoard(domain.FilterCreated, nil),
		},
	}
}

// @Summary Task board
// @Tags tasks
// @Param filter query string false "all | assigned | created"
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	board, ok := h.boardFor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, board.Get(stdCtx))
}

// @Summary Refetch the task board
// @Tags tasks
// @Param filter query string false "all | assigned | created"
// @Router /api/v1/tasks/refresh [post]
func (h *TaskHandler) Refresh(ctx *fasthttp.RequestCtx) {
	board, ok := h.boardFor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, board.Refresh(stdCtx))
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	creator, ok := h.currentProfile(ctx)
	if !ok {
		return
	}
	var req transport.CreateTaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, taskUC.NewTask{
		Title:              req.Title,
		Description:        req.Description,
		DueDate:            req.DueDate,
		AssignToProfileID:  req.AssignToProfileID,
		CreatedByProfileID: creator.ID,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.invalidate()
	appLogger.WithRequestID(stdCtx, h.logger).Debug("task board invalidated", zap.Int64("task_id", created.ID))
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Reassign task
// @Tags tasks
// @Router /api/v1/tasks/{id}/assign [put]
func (h *TaskHandler) AssignTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.AssignTaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Assign(stdCtx, id, req.ProfileID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.invalidate()
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Mark task complete or open
// @Tags tasks
// @Router /api/v1/tasks/{id}/complete [put]
func (h *TaskHandler) CompleteTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.CompleteTaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SetComplete(stdCtx, id, req.IsComplete); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.invalidate()
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// Close detaches the boards; fetches still in flight are discarded.
func (h *TaskHandler) Close() {
	for _, board := range h.boards {
		board.Close()
	}
}

// boardFor returns the board for the requested filter (all when absent),
// pointed at the current profile.
func (h *TaskHandler) boardFor(ctx *fasthttp.RequestCtx) (*taskUC.Board, bool) {
	filter, err := domain.ParseTaskFilter(string(ctx.QueryArgs().Peek("filter")))
	if err != nil {
		h.respondError(ctx, err)
		return nil, false
	}
	board := h.boards[filter]
	board.SetFilter(filter, h.account.ProfileID())
	return board, true
}

func (h *TaskHandler) invalidate() {
	for _, board := range h.boards {
		board.Invalidate()
	}
}
