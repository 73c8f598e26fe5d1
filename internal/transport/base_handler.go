package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/pkg/logger"
)

// statusByType is the one place where an error kind turns into an HTTP status.
var statusByType = map[internal.ErrorType]int{
	internal.ErrorTypeValidation:   http.StatusBadRequest,
	internal.ErrorTypeIntegrity:    http.StatusBadRequest,
	internal.ErrorTypeNotFound:     http.StatusNotFound,
	internal.ErrorTypeUnauthorized: http.StatusUnauthorized,
	internal.ErrorTypeForbidden:    http.StatusForbidden,
	internal.ErrorTypeInternal:     http.StatusInternalServerError,
}

// tokenCodes are collapsed into one client facing code; the detail only goes to logs.
var tokenCodes = map[internal.ErrorCode]bool{
	internal.ErrCodeMalformedToken: true,
	internal.ErrCodeBadSignature:   true,
	internal.ErrCodeTokenExpired:   true,
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteCreated writes 201 with a Location header pointing at the new resource.
func (h *BaseHandler) WriteCreated(w http.ResponseWriter, location string, data interface{}) {
	w.Header().Set("Location", location)
	h.WriteJSON(w, http.StatusCreated, data)
}

func (h *BaseHandler) WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteAppError maps err to its status and writes the JSON error body. Anything that
// is not an *internal.AppError becomes a 500 without detail.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, err error) {
	status, body := h.resolve(err)
	if status == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") == "" {
		w.Header().Set("WWW-Authenticate", `Bearer realm="catalog"`)
	}
	h.WriteJSON(w, status, internal.Response{Error: body})
}

func (h *BaseHandler) resolve(err error) (int, *internal.AppError) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		h.Logger.Error("unhandled error", "error", err)
		return http.StatusInternalServerError, internal.NewInternalError("Internal server error", nil)
	}

	status, known := statusByType[appErr.Type]
	if !known {
		status = http.StatusInternalServerError
	}

	switch {
	case status >= http.StatusInternalServerError:
		h.Logger.Error("internal error", "code", appErr.Code, "error", appErr.Error())
		return status, internal.NewInternalError("Internal server error", nil)
	case tokenCodes[appErr.Code]:
		h.Logger.Warn("token rejected", "kind", appErr.Code, "error", appErr.Error())
		return status, internal.ErrInvalidToken
	default:
		h.Logger.Debug("request failed", "status", status, "code", appErr.Code, "error", appErr.Error())
		return status, appErr
	}
}

// DecodeJSON reads a JSON body into dst, rejecting unknown fields.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) *internal.AppError {
	if r.Body == nil {
		return internal.NewValidationError("request body is required", internal.ErrCodeInvalidRequest)
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return internal.NewValidationError("request body is required", internal.ErrCodeInvalidRequest)
		}
		return internal.NewValidationError("invalid request body", internal.ErrCodeInvalidRequest).WithCause(err)
	}
	return nil
}

// ParseID reads a positive int64 chi URL parameter.
func (h *BaseHandler) ParseID(r *http.Request, param string) (int64, *internal.AppError) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationError("invalid id", internal.ErrCodeInvalidID)
	}
	return id, nil
}

// BearerToken returns the bearer credential of r, or "" when none is sent.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
