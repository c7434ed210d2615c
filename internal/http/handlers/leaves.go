package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/hrhub/internal/actorctx"
	"github.com/geocoder89/hrhub/internal/config"
	"github.com/geocoder89/hrhub/internal/domain/leave"
	"github.com/gin-gonic/gin"
)

type LeaveWorkflow interface {
	Create(ctx context.Context, actor actorctx.Actor, in leave.Input) (leave.Leave, error)
	SetStatus(ctx context.Context, actor actorctx.Actor, id string, status leave.Status) (leave.Leave, error)
	Cancel(ctx context.Context, actor actorctx.Actor, id string) error
	ListMine(ctx context.Context, actor actorctx.Actor) ([]leave.Leave, error)
	ListAll(ctx context.Context, actor actorctx.Actor) ([]leave.WithEmployee, error)
	ListPending(ctx context.Context, actor actorctx.Actor) ([]leave.WithEmployee, error)
	ListByEmployee(ctx context.Context, actor actorctx.Actor, employeeID string) ([]leave.WithEmployee, error)
}

type LeavesHandler struct {
	leaves LeaveWorkflow
}

func NewLeavesHandler(leaves LeaveWorkflow) *LeavesHandler {
	return &LeavesHandler{leaves: leaves}
}

func (h *LeavesHandler) Create(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req leave.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	l, err := h.leaves.Create(cctx, actor, req.Input())
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, l)
}

func (h *LeavesHandler) UpdateStatus(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req leave.UpdateStatusRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	l, err := h.leaves.SetStatus(cctx, actor, ctx.Param("id"), req.Status)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, l)
}

func (h *LeavesHandler) Cancel(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	if err := h.leaves.Cancel(cctx, actor, ctx.Param("id")); err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Leave request cancelled"})
}

func (h *LeavesHandler) ListMine(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	items, err := h.leaves.ListMine(cctx, actor)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *LeavesHandler) ListAll(ctx *gin.Context) {
	h.listJoined(ctx, h.leaves.ListAll)
}

func (h *LeavesHandler) ListPending(ctx *gin.Context) {
	h.listJoined(ctx, h.leaves.ListPending)
}

func (h *LeavesHandler) ListByEmployee(ctx *gin.Context) {
	h.listJoined(ctx, func(c context.Context, a actorctx.Actor) ([]leave.WithEmployee, error) {
		return h.leaves.ListByEmployee(c, a, ctx.Param("id"))
	})
}

func (h *LeavesHandler) listJoined(ctx *gin.Context, list func(context.Context, actorctx.Actor) ([]leave.WithEmployee, error)) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	items, err := list(cctx, actor)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, items)
}
