package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-record-service/internal/usecase/user"
	pkgerrors "user-record-service/pkg/errors"
	"user-record-service/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.UserUsecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.UserUsecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// UserRequest is the body accepted by POST, PUT and PATCH.
// Both JSON and form-encoded bodies are bound.
type UserRequest struct {
	Name  string `json:"name" form:"name"`
	Email string `json:"email" form:"email"`
}

// UserResponse is the public projection of a user. No other field is ever exposed.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

// ListUsers handles GET /api/users/
func (h *UserHandler) ListUsers(c *gin.Context) {
	resp, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponses(resp.Users))
}

// CreateUser handles POST /api/users/
func (h *UserHandler) CreateUser(c *gin.Context) {
	req, err := h.bindUserRequest(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponses(resp.Users))
}

// UpdateUserEmail handles PUT /api/users/
func (h *UserHandler) UpdateUserEmail(c *gin.Context) {
	req, err := h.bindUserRequest(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp, err := h.uc.UpdateUserEmail(c.Request.Context(), user.UpdateUserEmailRequest{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponses(resp.Users))
}

// GetUser handles GET /api/user/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		h.handleError(c, pkgerrors.NewNotFoundError("user", user.MsgUserNotFound))
		return
	}

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(*resp))
}

// UpdateUser handles PATCH /api/user/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		h.handleError(c, pkgerrors.NewNotFoundError("user", user.MsgUserIDNotFound))
		return
	}

	req, err := h.bindUserRequest(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(*resp))
}

// DeleteUser handles DELETE /api/user/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		h.handleError(c, pkgerrors.NewNotFoundError("user", user.MsgUserIDNotFound))
		return
	}

	resp, err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: id})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponses(resp.Users))
}

// bindUserRequest decodes the body. Type checks happen here; presence and
// length checks are left to the usecase.
func (h *UserHandler) bindUserRequest(c *gin.Context) (UserRequest, error) {
	var req UserRequest
	err := c.ShouldBind(&req)
	if err == nil || errors.Is(err, io.EOF) {
		// An empty JSON body binds to empty fields, which fail validation downstream.
		return req, nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return req, pkgerrors.NewValidationError(typeErr.Field, "must be a string")
	}

	logger.WithContext(c.Request.Context(), h.log).Warn("invalid request body", zap.Error(err))
	return req, pkgerrors.NewValidationError("", "invalid request body")
}

// parseUserID reads the :id path parameter. Only positive integers address a user.
func parseUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// handleError converts usecase errors to appropriate HTTP responses
func (h *UserHandler) handleError(c *gin.Context, err error) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var httpErr pkgerrors.HTTPError
	if !errors.As(err, &httpErr) || httpErr.HTTPStatus() >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	resp := ErrorResponse{
		Error:   httpErr.Code(),
		Message: httpErr.Error(),
	}

	var vErr *pkgerrors.ValidationError
	if errors.As(err, &vErr) {
		resp.Field = vErr.Field
	}

	log.Debug("request rejected", zap.Int("status", httpErr.HTTPStatus()), zap.Error(err))
	c.JSON(httpErr.HTTPStatus(), resp)
}

func toUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

func toUserResponses(users []user.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}
