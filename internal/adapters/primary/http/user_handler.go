package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lorrc/user-registry/internal/adapters/primary/validation"
	"github.com/lorrc/user-registry/internal/core/domain"
	apperrors "github.com/lorrc/user-registry/internal/core/errors"
	"github.com/lorrc/user-registry/internal/core/ports"
	"github.com/lorrc/user-registry/internal/infrastructure/logging"
)

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks shape only; domain rules are enforced by the service.
func (r *CreateUserRequest) Validate() error {
	return validation.NewValidator().
		Required("name", r.Name).
		MaxLength("name", r.Name, domain.MaxNameLength).
		Required("email", r.Email).
		Email("email", r.Email).
		Required("password", r.Password).
		Err()
}

// UserResponse is a registered user without credentials.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ProfileResponse is an upstream profile.
type ProfileResponse struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

// AvatarResponse carries a verified avatar.
type AvatarResponse struct {
	Base64Avatar string `json:"base64Avatar"`
}

// UserHandler handles HTTP requests for users, profiles and avatars.
type UserHandler struct {
	users        ports.UserService
	profiles     ports.ProfileService
	avatars      ports.AvatarService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(
	users ports.UserService,
	profiles ports.ProfileService,
	avatars ports.AvatarService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		users:        users,
		profiles:     profiles,
		avatars:      avatars,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "users"),
	}
}

// RegisterRoutes registers the /users routes.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreate)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", h.HandleGetProfile)
		r.Get("/avatar", h.HandleGetAvatar)
		r.Delete("/avatar", h.HandleDeleteAvatar)
	})
}

// HandleCreate handles POST /users.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[CreateUserRequest](w, r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user registered", "user_id", user.ID)
	WriteCreated(w, UserResponse{ID: user.ID, Name: user.Name, Email: user.Email})
}

// HandleGetProfile handles GET /users/{userID}.
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, ProfileResponse{
		ID:        profile.ID,
		Email:     profile.Email,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Avatar:    profile.Avatar,
	})
}

// HandleGetAvatar handles GET /users/{userID}/avatar.
func (h *UserHandler) HandleGetAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	ctx := logging.WithSubject(r.Context(), userID)

	profile, err := h.profiles.GetProfile(ctx, userID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.avatars.GetAvatar(ctx, userID, profile.Avatar)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if !result.Verified {
		h.errorHandler.Handle(w, r, apperrors.ErrAvatarCorrupted)
		return
	}

	WriteJSON(w, http.StatusOK, AvatarResponse{Base64Avatar: result.Content})
}

// HandleDeleteAvatar handles DELETE /users/{userID}/avatar.
func (h *UserHandler) HandleDeleteAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.avatars.DeleteAvatar(logging.WithSubject(r.Context(), userID), userID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteNoContent(w)
}

func (h *UserHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := chi.URLParam(r, "userID")
	v := validation.NewValidator().UserID("userID", userID)
	if v.HasErrors() {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(apperrors.ErrInvalidUserID, "Invalid user id"))
		return "", false
	}
	return userID, true
}
