package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/dtos"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/middleware"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/services"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/utils"
)

type AuthController struct {
	authService services.AuthService
}

func NewAuthController(authService services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

var authValidate = validator.New()

// ---------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidRequest, "Invalid payload", err)
		return
	}
	if err := authValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", err)
		return
	}

	user, token, err := c.authService.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrPasswordMismatch):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Passwords do not match", err)
		case errors.Is(err, utils.ErrUsernameExists):
			utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeDuplicate, "Username already in use", err)
		case errors.Is(err, utils.ErrEmailExists):
			utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeDuplicate, "Email already in use", err)
		default:
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to register user", err)
		}
		return
	}

	resp := dtos.AuthResponse{
		Token:     token,
		TokenType: dtos.TokenType,
		User:      dtos.NewUserResponse(*user),
		Message:   "User registered successfully",
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// ---------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidRequest, "Invalid payload", err)
		return
	}
	if err := authValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidRequest, "Username and password are required", err)
		return
	}

	user, token, err := c.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidCredentials) {
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeInvalidCreds, "Invalid username or password", err)
		} else {
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Login failed", err)
		}
		return
	}

	resp := dtos.AuthResponse{
		Token:     token,
		TokenType: dtos.TokenType,
		User:      dtos.NewUserResponse(*user),
		Message:   "Login successful",
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------
// Me
// ---------------------------------------------------------------------
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	tokenStr, err := middleware.ExtractBearerToken(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required", err)
		return
	}

	user, err := c.authService.CurrentUser(r.Context(), tokenStr)
	if err != nil {
		respondTokenError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.NewUserResponse(*user))
}

// ---------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	tokenStr, err := middleware.ExtractBearerToken(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidRequest, "Missing bearer token", err)
		return
	}

	if err := c.authService.Logout(r.Context(), tokenStr); err != nil {
		if errors.Is(err, utils.ErrInvalidToken) {
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeInvalidToken, "Invalid token", err)
		} else {
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to logout", err)
		}
		return
	}

	resp := dtos.LogoutResponse{
		Message:   "Logged out successfully",
		Timestamp: time.Now().UTC(),
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------
func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dtos.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidRequest, "Invalid payload", err)
		return
	}
	if err := authValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidRequest, "Token is required", err)
		return
	}

	user, token, err := c.authService.Refresh(r.Context(), req.Token)
	if err != nil {
		respondTokenError(w, err)
		return
	}

	resp := dtos.AuthResponse{
		Token:     token,
		TokenType: dtos.TokenType,
		User:      dtos.NewUserResponse(*user),
		Message:   "Token refreshed successfully",
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------
func (c *AuthController) Validate(w http.ResponseWriter, r *http.Request) {
	tokenStr, err := middleware.ExtractBearerToken(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidRequest, "Missing bearer token", err)
		return
	}

	user, err := c.authService.CheckToken(r.Context(), tokenStr)
	if err != nil {
		respondTokenError(w, err)
		return
	}

	resp := dtos.ValidateResponse{
		Valid:   true,
		User:    dtos.NewUserResponse(*user),
		Message: "Token is valid",
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// respondTokenError maps the session errors shared by me/refresh/validate.
func respondTokenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, utils.ErrInvalidToken):
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeInvalidToken, "Invalid or expired token", err)
	case errors.Is(err, utils.ErrUserNotFound):
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUserNotFound, "User no longer exists", err)
	default:
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Token check failed", err)
	}
}
