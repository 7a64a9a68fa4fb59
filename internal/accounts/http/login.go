package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/verify"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// LoginHandler drives the two-step login: credentials first, then the SMS
// code against the attempt the first step returned.
type LoginHandler struct {
	Attempts    *service.AttemptRegistry
	PassService *service.PassService
}

// HandleStart godoc
//
//	@Summary		Start Login
//	@Description	Check the username and password and send a verification code by SMS.
//	@Description	The code is only sent once the password matches.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.LoginRequest		true	"username, password, phone"
//	@Success		202		{object}	accountsdk.LoginResponse	"attempt_id, masked destination, state"
//	@Failure		400		{object}	accountsdk.APIError			"invalid_request"
//	@Failure		401		{object}	accountsdk.APIError			"invalid_credentials"
//	@Failure		409		{object}	accountsdk.APIError			"login_in_progress"
//	@Failure		502		{object}	accountsdk.APIError			"issue_failed"
//	@Router			/v1/login [post].
func (h *LoginHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req accountsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		accountsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	id, attempt, err := h.Attempts.Start(ctx, strings.TrimSpace(req.Username), req.Password, req.Phone)
	if err != nil {
		var issueErr *verify.IssueError
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			accountsdk.ErrInvalidCredentials.WriteError(w)
		case errors.Is(err, service.ErrLoginInProgress):
			accountsdk.ErrLoginInProgress.WriteError(w)
		case errors.As(err, &issueErr):
			accountsdk.ErrIssueFailed.WithDescription(issueErr.Error()).WriteError(w)
		default:
			log.Error("failed to start login", "err", err)
			accountsdk.ErrServerError.WriteError(w)
		}
		return
	}
	if id.IsZero() || attempt == nil {
		accountsdk.ErrIssueFailed.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, accountsdk.LoginResponse{
		AttemptID:   id.String(),
		Destination: verify.MaskDestination(attempt.Destination()),
		State:       attempt.State().String(),
	})
}

// HandleVerify godoc
//
//	@Summary		Verify Login
//	@Description	Submit the SMS code for a login attempt. An approved code returns a home pass.
//	@Description	A denied code leaves the attempt open for another try.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Login attempt ID"
//	@Param			request	body		accountsdk.VerifyRequest	true	"code"
//	@Success		200		{object}	accountsdk.VerifyResponse	"state, pass, expires_in, username"
//	@Failure		400		{object}	accountsdk.APIError			"invalid_code"
//	@Failure		403		{object}	accountsdk.APIError			"too_many_attempts"
//	@Failure		404		{object}	accountsdk.APIError			"attempt_not_found"
//	@Failure		409		{object}	accountsdk.APIError			"invalid_state"
//	@Failure		503		{object}	accountsdk.APIError			"check_failed"
//	@Router			/v1/login/{id}/verify [post].
func (h *LoginHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		accountsdk.ErrAttemptNotFound.WriteError(w)
		return
	}

	var req accountsdk.VerifyRequest
	if err := httpx.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		accountsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		accountsdk.ErrInvalidRequest.WithDescription("code is required").WriteError(w)
		return
	}

	attempt, outcome, err := h.Attempts.Submit(ctx, id, code)
	if err != nil {
		var checkErr *verify.CheckError
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			accountsdk.ErrAttemptNotFound.WriteError(w)
		case errors.Is(err, service.ErrInvalidState):
			accountsdk.ErrInvalidState.WriteError(w)
		case errors.Is(err, service.ErrTooManyAttempts):
			accountsdk.ErrTooManyAttempts.WriteError(w)
		case errors.As(err, &checkErr):
			accountsdk.ErrCheckFailed.WithDescription(checkErr.Error()).WriteError(w)
		default:
			log.Error("failed to check verification code", "err", err)
			accountsdk.ErrServerError.WriteError(w)
		}
		return
	}

	if !outcome.Approved() {
		accountsdk.ErrInvalidCode.WriteError(w)
		return
	}

	result, ok := attempt.Result()
	if !ok || !result.Authenticated() {
		log.Error("approved attempt has no authenticated result", "attempt_id", id.String())
		accountsdk.ErrServerError.WriteError(w)
		return
	}

	pass, expiresAt, err := h.PassService.Mint(result.User, id.String())
	if err != nil {
		log.Error("failed to mint pass", "err", err)
		accountsdk.ErrServerError.WriteError(w)
		return
	}

	log.Info("login approved", "username", result.User.Username, "attempt_id", id.String())
	httpx.WriteJSON(w, http.StatusOK, accountsdk.VerifyResponse{
		State:     attempt.State().String(),
		Pass:      pass,
		TokenType: "Bearer",
		ExpiresIn: int(time.Until(expiresAt).Seconds()),
		Username:  result.User.Username,
	})
}

// HandleCancel godoc
//
//	@Summary		Cancel Login
//	@Description	Abandon a login attempt that is waiting for its code.
//	@Tags			Login
//	@Param			id	path	string	true	"Login attempt ID"
//	@Success		204
//	@Failure		404	{object}	accountsdk.APIError	"attempt_not_found"
//	@Router			/v1/login/{id} [delete].
func (h *LoginHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		accountsdk.ErrAttemptNotFound.WriteError(w)
		return
	}

	if err := h.Attempts.Cancel(id); err != nil {
		accountsdk.ErrAttemptNotFound.WriteError(w)
		return
	}

	slogx.FromContext(r.Context()).Info("login cancelled", "attempt_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}
