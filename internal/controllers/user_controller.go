package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/dtos"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/repositories"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// UserController exposes the admin-only directory endpoints. Routes are
// mounted behind middleware.RequireAdmin.
type UserController struct {
	users repositories.UserRepository
}

func NewUserController(users repositories.UserRepository) *UserController {
	return &UserController{users: users}
}

func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	users, err := c.users.List(r.Context(), limit, offset)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to list users", err)
		return
	}

	resp := dtos.UserListResponse{
		Users:  make([]dtos.UserResponse, 0, len(users)),
		Limit:  limit,
		Offset: offset,
	}
	for _, u := range users {
		resp.Users = append(resp.Users, dtos.NewUserResponse(u))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// DeactivateUser soft-deletes an account. Tokens already issued for it
// stop working on their next request, because the gateway re-checks the
// live directory.
func (c *UserController) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidRequest, "Invalid user id", err)
		return
	}

	if err := c.users.SetActive(r.Context(), id, false); err != nil {
		if errors.Is(err, utils.ErrUserNotFound) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "User not found", err)
		} else {
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to deactivate user", err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
