package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/hrhub/internal/actorctx"
	"github.com/geocoder89/hrhub/internal/config"
	"github.com/geocoder89/hrhub/internal/domain/leave"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/service"
	"github.com/gin-gonic/gin"
)

type UserDirectory interface {
	Register(ctx context.Context, req user.RegisterRequest) (service.AuthResult, error)
	Login(ctx context.Context, email, password string) (service.AuthResult, error)
	Create(ctx context.Context, actor actorctx.Actor, req user.CreateUserRequest) (user.User, error)
	Update(ctx context.Context, actor actorctx.Actor, id string, req user.UpdateUserRequest) (user.User, error)
	List(ctx context.Context, actor actorctx.Actor) ([]user.User, error)
	Get(ctx context.Context, actor actorctx.Actor, id string) (user.User, error)
	Delete(ctx context.Context, actor actorctx.Actor, id string) (service.DeleteResult, error)
	Profile(ctx context.Context, actor actorctx.Actor) (service.Profile, error)
	DashboardStats(ctx context.Context, actor actorctx.Actor) (service.DashboardStats, error)
}

// LeaveStatsReader backs the employee stats card.
type LeaveStatsReader interface {
	Stats(ctx context.Context, actor actorctx.Actor) (leave.Stats, error)
}

type UsersHandler struct {
	users  UserDirectory
	leaves LeaveStatsReader
}

func NewUsersHandler(users UserDirectory, leaves LeaveStatsReader) *UsersHandler {
	return &UsersHandler{users: users, leaves: leaves}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	res, err := h.users.Register(cctx, req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, res)
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req loginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	res, err := h.users.Login(cctx, req.Email, req.Password)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, res)
}

func (h *UsersHandler) Create(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req user.CreateUserRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	u, err := h.users.Create(cctx, actor, req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *UsersHandler) List(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	items, err := h.users.List(cctx, actor)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

func (h *UsersHandler) Get(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	u, err := h.users.Get(cctx, actor, ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, u)
}

func (h *UsersHandler) Update(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req user.UpdateUserRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	u, err := h.users.Update(cctx, actor, ctx.Param("id"), req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	res, err := h.users.Delete(cctx, actor, ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Employee and all related data deleted successfully",
		"deleted": res,
	})
}

func (h *UsersHandler) Profile(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	p, err := h.users.Profile(cctx, actor)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *UsersHandler) DashboardStats(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	st, err := h.users.DashboardStats(cctx, actor)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, st)
}

func (h *UsersHandler) EmployeeStats(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	st, err := h.leaves.Stats(cctx, actor)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, st)
}
