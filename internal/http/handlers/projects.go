package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/hrhub/internal/actorctx"
	"github.com/geocoder89/hrhub/internal/config"
	"github.com/geocoder89/hrhub/internal/domain/project"
	"github.com/gin-gonic/gin"
)

type ProjectRoster interface {
	Create(ctx context.Context, actor actorctx.Actor, spec project.Spec) (project.Project, error)
	Get(ctx context.Context, id string) (project.Project, error)
	List(ctx context.Context) ([]project.Project, error)
	ListMine(ctx context.Context, actor actorctx.Actor) ([]project.Project, error)
	ByEmployee(ctx context.Context, actor actorctx.Actor, userID string) ([]project.Project, error)
	Update(ctx context.Context, actor actorctx.Actor, id string, req project.UpdateRequest) (project.Project, error)
	Assign(ctx context.Context, actor actorctx.Actor, projectID, userID string) (project.Project, error)
	Remove(ctx context.Context, actor actorctx.Actor, projectID, userID string) (project.Project, error)
	Delete(ctx context.Context, actor actorctx.Actor, id string) error
	Stats(ctx context.Context, actor actorctx.Actor) (project.Stats, error)
}

type ProjectsHandler struct {
	projects ProjectRoster
}

func NewProjectsHandler(projects ProjectRoster) *ProjectsHandler {
	return &ProjectsHandler{projects: projects}
}

func (h *ProjectsHandler) Create(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req project.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	p, err := h.projects.Create(cctx, actor, req.Spec())
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

func (h *ProjectsHandler) Get(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	p, err := h.projects.Get(cctx, ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, p)
}

func (h *ProjectsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	items, err := h.projects.List(cctx)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

func (h *ProjectsHandler) ListMine(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	items, err := h.projects.ListMine(cctx, actor)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *ProjectsHandler) ByEmployee(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	items, err := h.projects.ByEmployee(cctx, actor, ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *ProjectsHandler) Update(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req project.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	p, err := h.projects.Update(cctx, actor, ctx.Param("id"), req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *ProjectsHandler) Assign(ctx *gin.Context) {
	h.roster(ctx, h.projects.Assign)
}

func (h *ProjectsHandler) Remove(ctx *gin.Context) {
	h.roster(ctx, h.projects.Remove)
}

func (h *ProjectsHandler) roster(ctx *gin.Context, op func(context.Context, actorctx.Actor, string, string) (project.Project, error)) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	p, err := op(cctx, actor, ctx.Param("id"), ctx.Param("employeeId"))
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *ProjectsHandler) Delete(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	if err := h.projects.Delete(cctx, actor, ctx.Param("id")); err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

func (h *ProjectsHandler) Stats(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	st, err := h.projects.Stats(cctx, actor)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, st)
}
