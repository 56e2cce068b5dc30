package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"webapp/internal/service"
)

// UserHandler serves the account lifecycle endpoints.
type UserHandler struct {
	svc service.AccountService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.AccountService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUserRequest represents a registration request.
type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,passwordbytes"`
	FirstName string `json:"first_name" validate:"required,max=255"`
	LastName  string `json:"last_name" validate:"required,max=255"`
}

// UpdateUserRequest represents a partial profile update.
type UpdateUserRequest struct {
	FirstName string `json:"first_name" validate:"omitempty,max=255"`
	LastName  string `json:"last_name" validate:"omitempty,max=255"`
	Password  string `json:"password" validate:"omitempty,passwordbytes"`
}

// MessageResponse carries a human readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateUser godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "Registration data"
// @Success 201 {object} model.Account
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /users/ [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}

	account, err := h.svc.Register(c.Request().Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, account)
}

// VerifyUser godoc
// @Summary Verify an email address
// @Tags users
// @Produce json
// @Param user query string true "Email the token was issued for"
// @Param token query string true "Verification token"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/verify [get]
func (h *UserHandler) VerifyUser(c echo.Context) error {
	email := c.QueryParam("user")
	token := c.QueryParam("token")
	if email == "" || token == "" {
		return badRequest("user and token are required", "INVALID_REQUEST")
	}

	if err := h.svc.Verify(c.Request().Context(), email, token); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Email successfully verified"})
}

// GetUser godoc
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BasicAuth
// @Param id path int true "User ID"
// @Success 200 {object} model.Account
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseAccountID(c)
	if err != nil {
		return err
	}
	account, err := h.svc.GetProfile(c.Request().Context(), id, CurrentAccount(c))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, account)
}

// UpdateUser godoc
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} model.Account
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := parseAccountID(c)
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := bindStrict(c, &req); err != nil {
		return badRequest("invalid request body, allowed fields: first_name, last_name, password", "INVALID_REQUEST")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}

	account, err := h.svc.UpdateProfile(c.Request().Context(), id, CurrentAccount(c), service.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, account)
}

func parseAccountID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid id", "INVALID_ID")
	}
	return uint(id), nil
}
