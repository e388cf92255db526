package rest

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/daleavatar/internal/common"
	"github.com/dmitrijs2005/daleavatar/internal/server/models"
	"github.com/dmitrijs2005/daleavatar/internal/validation"
)

type registerRequest struct {
	Email    string  `json:"email" validate:"required,max=320"`
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Password string  `json:"password" validate:"required,max=1024"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name            *string         `json:"name" validate:"omitempty,max=200"`
	ProfileSettings json.RawMessage `json:"profileSettings"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,max=1024"`
}

type userSummary struct {
	ID    int64   `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

type authResponse struct {
	User  userSummary `json:"user"`
	Token string      `json:"token"`
}

// decodeAndValidate reads the body into req and checks its rules. It writes
// the 400 response itself and returns false when the request is unusable.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := decodeJSON(r, req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}

	if err := validation.ValidateStruct(req); err != nil {
		code := "invalid_fields"
		var verr *validation.RequestError
		if errors.As(err, &verr) && verr.MissingOnly() {
			code = "missing_fields"
		}
		writeError(w, http.StatusBadRequest, code, err.Error())
		return false
	}
	return true
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.users.Register(r.Context(), req.Email, req.Name, req.Password)
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, "missing_fields", "Email and password are required")
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, "user_exists", "User with this email already exists")
	case err != nil:
		h.internalError(w, r, "registration_failed", err)
	default:
		writeJSON(w, http.StatusCreated, newAuthResponse(res.User, res.Token))
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.users.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, "missing_fields", "Email and password are required")
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	case err != nil:
		h.internalError(w, r, "login_failed", err)
	default:
		writeJSON(w, http.StatusOK, newAuthResponse(res.User, res.Token))
	}
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "No token provided")
		return
	}

	user, err := h.users.Profile(r.Context(), id)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", "")
	case err != nil:
		h.internalError(w, r, "profile_fetch_failed", err)
	default:
		writeJSON(w, http.StatusOK, user)
	}
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "No token provided")
		return
	}

	var req profileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	// An explicit null clears the settings.
	upd := models.ProfileUpdate{Name: req.Name, ProfileSettings: req.ProfileSettings}

	err := h.users.UpdateProfile(r.Context(), id, upd)
	switch {
	case errors.Is(err, common.ErrorNoUpdates):
		writeError(w, http.StatusBadRequest, "no_updates", "No fields to update")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", "")
	case err != nil:
		h.internalError(w, r, "profile_update_failed", err)
	default:
		writeJSON(w, http.StatusOK, &okResponse{OK: true})
	}
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "No token provided")
		return
	}

	var req changePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.users.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, "missing_fields", "Current and new passwords are required")
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "invalid_password", "Current password is incorrect")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", "")
	case err != nil:
		h.internalError(w, r, "password_change_failed", err)
	default:
		writeJSON(w, http.StatusOK, &okResponse{OK: true})
	}
}

func newAuthResponse(u *models.User, token string) *authResponse {
	return &authResponse{
		User:  userSummary{ID: u.ID, Email: u.Email, Name: u.Name},
		Token: token,
	}
}
