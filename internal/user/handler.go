package user

import (
	"context"
	"fmt"
	"net/http"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/internal/auth"
	"github.com/frahmantamala/catalog-management/internal/core/common/pagination"
	"github.com/frahmantamala/catalog-management/internal/transport"
)

type ServiceAPI interface {
	FindAllPaged(ctx context.Context, page pagination.PageRequest) (pagination.Page[UserDTO], error)
	FindByID(ctx context.Context, id int64) (*UserDTO, error)
	Insert(ctx context.Context, req UserInsertRequest) (*UserDTO, error)
	Update(ctx context.Context, id int64, req UserUpdateRequest) (*UserDTO, error)
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

// GetCurrentUser handles GET /me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthenticated)
		return
	}

	dto, err := h.Service.FindByID(r.Context(), principal.UserID)
	if err != nil {
		h.Logger.Error("GetCurrentUser: lookup failed", "user_id", principal.UserID, "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
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

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
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

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserInsertRequest
	if derr := h.DecodeJSON(r, &req); derr != nil {
		h.WriteAppError(w, derr)
		return
	}

	dto, err := h.Service.Insert(r.Context(), req)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteCreated(w, fmt.Sprintf("/users/%d", dto.ID), dto)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, perr := h.ParseID(r, "id")
	if perr != nil {
		h.WriteAppError(w, perr)
		return
	}

	var req UserUpdateRequest
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

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
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
