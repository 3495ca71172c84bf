package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/campuschat-server/internal/store"
)

// UserHandlers provides HTTP handlers for directory lookups.
type UserHandlers struct {
	users store.UserStore
	log   *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(users store.UserStore, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		users: users,
		log:   logger,
	}
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func userToResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     string(u.Role),
	}
}

// Me returns the authenticated user.
// GET /api/me
func (h *UserHandlers) Me(c *gin.Context) {
	uid, ok := currentUserID(c, h.log)
	if !ok {
		return
	}
	h.respondUser(c, uid)
}

// GetUser resolves a user by id.
// GET /api/users/:id
func (h *UserHandlers) GetUser(c *gin.Context) {
	if _, ok := currentUserID(c, h.log); !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id", Code: "bad_request"})
		return
	}
	h.respondUser(c, id)
}

func (h *UserHandlers) respondUser(c *gin.Context, id int64) {
	user, err := h.users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found", Code: "user_not_found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "storage unavailable", Code: "storage_failure"})
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}
