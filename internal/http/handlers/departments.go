package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/hrhub/internal/actorctx"
	"github.com/geocoder89/hrhub/internal/config"
	"github.com/geocoder89/hrhub/internal/domain/department"
	"github.com/gin-gonic/gin"
)

type DepartmentCatalog interface {
	Create(ctx context.Context, actor actorctx.Actor, req department.CreateRequest) (department.Department, error)
	List(ctx context.Context) ([]department.Department, error)
}

type DepartmentsHandler struct {
	departments DepartmentCatalog
}

func NewDepartmentsHandler(departments DepartmentCatalog) *DepartmentsHandler {
	return &DepartmentsHandler{departments: departments}
}

func (h *DepartmentsHandler) Create(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req department.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	d, err := h.departments.Create(cctx, actor, req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, d)
}

func (h *DepartmentsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	items, err := h.departments.List(cctx)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}
