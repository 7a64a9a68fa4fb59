package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/verify"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

type RegisterHandler struct {
	RegistrationService *service.RegistrationService
}

// ServeHTTP godoc
//
//	@Summary		Register Endpoint
//	@Description	Create a user with a username, password and phone number.
//	@Description	Every field is required and usernames are unique.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.RegisterRequest	true	"username, password, phone"
//	@Success		201		{object}	accountsdk.RegisterResponse	"username, masked phone, created_at"
//	@Failure		400		{object}	accountsdk.APIError			"missing_field"
//	@Failure		409		{object}	accountsdk.APIError			"duplicate_username"
//	@Failure		500		{object}	accountsdk.APIError			"server_error"
//	@Router			/v1/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req accountsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		accountsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	user, err := h.RegistrationService.Register(ctx, req.Username, req.Password, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingField):
			accountsdk.ErrMissingField.WriteError(w)
		case errors.Is(err, service.ErrDuplicateUsername):
			accountsdk.ErrDuplicateUsername.WriteError(w)
		default:
			log.Error("failed to register user", "err", err)
			accountsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, accountsdk.RegisterResponse{
		Username:  user.Username,
		Phone:     verify.MaskDestination(user.Phone),
		CreatedAt: user.CreatedAt,
	})
}
