// Authentication HTTP handlers.
//
//   - POST /auth/login     (exchange credentials for a token)
//   - POST /auth/register  (create an account)
//   - GET  /me             (current user's profile)
//
// Handlers here are transport-thin: validate input, delegate to AuthService,
// translate sentinel errors into HTTP results.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lfarias/go-keys-backend/internal/domain"
	"github.com/lfarias/go-keys-backend/internal/services"
)

// AuthAPI is the slice of AuthService the handlers need.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Register(ctx context.Context, in services.RegisterInput) (*domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
}

// LoginRequest is the JSON payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ana@campus.edu"`
	Password string `json:"password" binding:"required" example:"hunter2"`
}

// RegisterRequest is the JSON payload for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=120" example:"Ana Lima"`
	Email    string `json:"email" binding:"required,email" example:"ana@campus.edu"`
	Password string `json:"password" binding:"required,min=8,max=72" example:"hunter22"`
	Role     string `json:"role" binding:"omitempty,oneof=student admin" example:"student"`
	Course   string `json:"course" binding:"omitempty,max=120" example:"Computer Science"`
	Period   int    `json:"period" binding:"omitempty,min=1,max=20" example:"4"`
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Exchanges an email/password pair for a bearer token.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
// @Success     200  {object}  services.LoginResult
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid payload"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}

	res, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid email or password")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, res)
}

// Register godoc
// @ID          register
// @Summary     Create an account
// @Description Registers a new user. Role defaults to student when omitted.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.RegisterRequest  true  "Account details"
// @Success     201  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid payload"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid registration payload")
		return
	}

	u, err := h.authSvc.Register(c.Request.Context(), services.RegisterInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Course:   strings.TrimSpace(req.Course),
		Period:   req.Period,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			fail(c, http.StatusConflict, ErrCodeConflict, "email already registered")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, u)
}

// Me godoc
// @ID          me
// @Summary     Current user profile
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     404  {object}  handlers.ErrorResponse  "User no longer exists"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /me [get]
func (h *Handlers) Me(c *gin.Context) {
	u, err := h.authSvc.Profile(c.Request.Context(), identity(c).ID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, u)
}
