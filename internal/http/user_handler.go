package http

import (
	"net/http"
	"time"

	"github.com/lmdl25/kenility-challenge/internal/model"
	"github.com/lmdl25/kenility-challenge/internal/service"
)

type userHandler struct {
	s   *Service
	svc service.UserService
}

func newUserHandler(s *Service, svc service.UserService) *userHandler {
	return &userHandler{s: s, svc: svc}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserResponse(user model.User) userResponse {
	return userResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}

func (h *userHandler) create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[createUserRequest](r)
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	if err := h.s.validate.Validate(req); err != nil {
		h.s.respondError(w, r, err)
		return
	}

	user, err := h.svc.CreateUser(r.Context(), service.CreateUserParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	h.s.respondJSON(w, r, http.StatusCreated, newUserResponse(user))
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *userHandler) login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[loginRequest](r)
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	if err := h.s.validate.Validate(req); err != nil {
		h.s.respondError(w, r, err)
		return
	}

	result, err := h.svc.Login(r.Context(), service.LoginParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	h.s.respondJSON(w, r, http.StatusOK, result)
}
