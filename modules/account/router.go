package account

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/containercalc/containercalc/pkg/auth"
	"github.com/containercalc/containercalc/pkg/handler"
	"github.com/containercalc/containercalc/pkg/logger"
)

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Company  string `json:"company"`
}

func (r signUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Name, validation.Length(0, 200)),
		validation.Field(&r.Company, validation.Length(0, 200)),
	)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r signInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type userResponse struct {
	User *auth.User `json:"user"`
}

// Router mounts the account endpoints. Session tokens travel in the
// manager's cookie; every state-changing response rewrites it.
func Router(svc *Service, log *slog.Logger) chi.Router {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &handlers{svc: svc, log: log}

	r := chi.NewRouter()
	r.Post("/signup", h.signUp)
	r.Post("/signin", h.signIn)
	r.Post("/signout", h.signOut)
	r.Post("/refresh", h.refresh)
	r.Get("/session", h.session)
	r.Post("/reset-password", h.resetPassword)
	r.Post("/reset-password/confirm", h.confirmReset)
	return r
}

type handlers struct {
	svc *Service
	log *slog.Logger
}

func (h *handlers) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		handler.ValidationFailed(w, err)
		return
	}

	user, sess, err := h.svc.SignUp(r.Context(), req.Email, req.Password, auth.Profile{
		Name:    req.Name,
		Company: req.Company,
	})
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	h.svc.Sessions().Transport().SetToken(w, sess.Token, h.svc.Sessions().TTL())
	handler.JSON(w, http.StatusCreated, userResponse{User: user})
}

func (h *handlers) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		handler.ValidationFailed(w, err)
		return
	}

	user, sess, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	h.svc.Sessions().Transport().SetToken(w, sess.Token, h.svc.Sessions().TTL())
	handler.JSON(w, http.StatusOK, userResponse{User: user})
}

func (h *handlers) signOut(w http.ResponseWriter, r *http.Request) {
	token, _ := h.svc.Sessions().Transport().Token(r)
	if err := h.svc.SignOut(r.Context(), token); err != nil {
		h.log.ErrorContext(r.Context(), "sign-out failed", logger.Error(err))
		handler.Error(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}
	h.svc.Sessions().Transport().ClearToken(w)
	handler.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	token, _ := h.svc.Sessions().Transport().Token(r)
	user, sess, err := h.svc.Refresh(r.Context(), token)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	h.svc.Sessions().Transport().SetToken(w, sess.Token, h.svc.Sessions().TTL())
	handler.JSON(w, http.StatusOK, userResponse{User: user})
}

// session reports the signed-in user. An anonymous request is not an error:
// it answers 200 with a null user so clients can settle their initial state
// without special-casing the status code.
func (h *handlers) session(w http.ResponseWriter, r *http.Request) {
	handler.NoStore(w)

	token, _ := h.svc.Sessions().Transport().Token(r)
	user, _, err := h.svc.CurrentUser(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			handler.JSON(w, http.StatusOK, userResponse{User: nil})
			return
		}
		h.log.ErrorContext(r.Context(), "session lookup failed", logger.Error(err))
		handler.Error(w, http.StatusInternalServerError, "Failed to load session")
		return
	}
	handler.JSON(w, http.StatusOK, userResponse{User: user})
}

func (h *handlers) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Validate(req.Email, validation.Required, is.Email); err != nil {
		handler.Error(w, http.StatusBadRequest, "A valid email is required")
		return
	}

	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.log.ErrorContext(r.Context(), "password reset request failed", logger.Error(err))
		handler.Error(w, http.StatusInternalServerError, "Failed to send reset email")
		return
	}
	handler.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handlers) confirmReset(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Token == "" {
		handler.Error(w, http.StatusBadRequest, "Reset token is required")
		return
	}

	if err := h.svc.ConfirmPasswordReset(r.Context(), req.Token, req.Password); err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handlers) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		handler.Error(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, auth.ErrUnauthorized):
		handler.Error(w, http.StatusUnauthorized, "Not signed in")
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		handler.Error(w, http.StatusConflict, "An account with this email already exists")
	case errors.Is(err, auth.ErrInvalidEmail):
		handler.Error(w, http.StatusBadRequest, "A valid email is required")
	case errors.Is(err, auth.ErrWeakPassword):
		handler.Error(w, http.StatusBadRequest, "Password must be between 8 and 128 characters")
	case errors.Is(err, auth.ErrTokenExpired):
		handler.Error(w, http.StatusBadRequest, "Reset link has expired")
	case errors.Is(err, auth.ErrTokenInvalid):
		handler.Error(w, http.StatusBadRequest, "Reset link is invalid")
	default:
		h.log.ErrorContext(r.Context(), "account operation failed", logger.Error(err))
		handler.Error(w, http.StatusInternalServerError, "Something went wrong")
	}
}
