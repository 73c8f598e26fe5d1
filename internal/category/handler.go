package category

import (
	"context"
	"fmt"
	"net/http"

	"github.com/frahmantamala/catalog-management/internal/core/common/pagination"
	"github.com/frahmantamala/catalog-management/internal/transport"
)

type ServiceAPI interface {
	FindAllPaged(ctx context.Context, page pagination.PageRequest) (pagination.Page[CategoryDTO], error)
	FindByID(ctx context.Context, id int64) (*CategoryDTO, error)
	Insert(ctx context.Context, req CategoryRequest) (*CategoryDTO, error)
	Update(ctx context.Context, id int64, req CategoryRequest) (*CategoryDTO, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	page, perr := pagination.Parse(r.URL.Query(), PageDefaults)
	if perr != nil {
		h.WriteAppError(w, perr)
		return
	}

	result, err := h.Service.FindAllPaged(r.Context(), page)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, perr := h.ParseID(r, "id")
	if perr != nil {
		h.WriteAppError(w, perr)
		return
	}

	dto, err := h.Service.FindByID(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if derr := h.DecodeJSON(r, &req); derr != nil {
		h.WriteAppError(w, derr)
		return
	}

	dto, err := h.Service.Insert(r.Context(), req)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteCreated(w, fmt.Sprintf("/categories/%d", dto.ID), dto)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, perr := h.ParseID(r, "id")
	if perr != nil {
		h.WriteAppError(w, perr)
		return
	}

	var req CategoryRequest
	if derr := h.DecodeJSON(r, &req); derr != nil {
		h.WriteAppError(w, derr)
		return
	}

	dto, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, perr := h.ParseID(r, "id")
	if perr != nil {
		h.WriteAppError(w, perr)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteNoContent(w)
}
