package http

import (
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// HomeMessage greets a user whose login was approved.
const HomeMessage = "Good Job! You Logged In!"

type HomeHandler struct {
	PassService *service.PassService
}

// HandleHome godoc
//
//	@Summary		Home
//	@Description	The authenticated landing view.
//	@Tags			Home
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	accountsdk.HomeResponse	"message, username"
//	@Failure		401	{object}	accountsdk.APIError		"invalid_token"
//	@Router			/v1/home [get].
func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	username, ok := httpx.UsernameFromContext(r.Context())
	if !ok {
		accountsdk.ErrInvalidToken.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.HomeResponse{
		Message:  HomeMessage,
		Username: username,
	})
}

// HandleSignOut godoc
//
//	@Summary		Sign Out
//	@Description	Revoke the presented pass. Later requests with it are rejected.
//	@Tags			Home
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	accountsdk.APIError	"invalid_token"
//	@Router			/v1/signout [post].
func (h *HomeHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		accountsdk.ErrInvalidToken.WriteError(w)
		return
	}

	h.PassService.Revoke(claims)
	slogx.FromContext(r.Context()).Info("signed out")
	w.WriteHeader(http.StatusNoContent)
}
