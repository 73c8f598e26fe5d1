package auth

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/internal/transport"
	"github.com/frahmantamala/catalog-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Token handles POST /oauth/token. Client credentials come from HTTP Basic auth or
// from the client_id and client_secret fields.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	dto, appErr := h.readTokenRequest(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if id, secret, ok := r.BasicAuth(); ok {
		dto.ClientID = id
		dto.ClientSecret = secret
	}

	token, err := h.Service.Token(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("token request failed", "grant_type", dto.GrantType, "client_id", dto.ClientID, "error", err)
		if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeInvalidClient {
			w.Header().Set("WWW-Authenticate", `Basic realm="oauth"`)
		}
		h.WriteAppError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	h.WriteJSON(w, http.StatusOK, NewAccessTokenResponse(token))
}

func (h *Handler) readTokenRequest(r *http.Request) (TokenRequestDTO, *internal.AppError) {
	var dto TokenRequestDTO

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			return dto, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidRequest).WithCause(err)
		}
		return dto, nil
	}

	if err := r.ParseForm(); err != nil {
		return dto, internal.NewValidationError("invalid form body", internal.ErrCodeInvalidRequest).WithCause(err)
	}
	dto = TokenRequestDTO{
		GrantType:    r.PostForm.Get("grant_type"),
		Username:     r.PostForm.Get("username"),
		Password:     r.PostForm.Get("password"),
		Scope:        r.PostForm.Get("scope"),
		ClientID:     r.PostForm.Get("client_id"),
		ClientSecret: r.PostForm.Get("client_secret"),
	}
	return dto, nil
}
