package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/synergia/erp-api/internal/api/metrics"
	"github.com/synergia/erp-api/internal/core/domain"
	"github.com/synergia/erp-api/internal/core/ports"
)

// UserHandler serves the admin-only user directory routes.
type UserHandler struct {
	service ports.UserService
	metrics *metrics.Metrics
}

func NewUserHandler(service ports.UserService, m *metrics.Metrics) *UserHandler {
	return &UserHandler{service: service, metrics: m}
}

// List returns every user, newest first.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=[]domain.User}
// @Failure      403  {object}  Envelope
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []domain.User{}
	}
	return respond(c, http.StatusOK, users)
}

// Invite creates a PENDING user and its external account. Role defaults to
// EMPLOYEE; a generated temporary password is returned once.
//
// @Summary      Invite user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      inviteUserRequest  true  "Invitation"
// @Success      201   {object}  Envelope{data=inviteResponse}
// @Failure      400   {object}  Envelope
// @Failure      409   {object}  Envelope
// @Failure      502   {object}  Envelope
// @Router       /users/invite [post]
func (h *UserHandler) Invite(c echo.Context) error {
	var req inviteUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Invite(c.Request().Context(), ports.InviteUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Role:     domain.Role(req.Role),
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	h.metrics.Mutation("user", "invite")
	return respondMessage(c, http.StatusCreated, inviteResponse{
		User:              res.User,
		TemporaryPassword: res.TemporaryPassword,
	}, "user invited")
}

// Update applies a sparse patch to name, role or status.
//
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  Envelope{data=domain.User}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.Update(c.Request().Context(), c.Param("id"), req.patch())
	if err != nil {
		return err
	}

	h.metrics.Mutation("user", "update")
	return respond(c, http.StatusOK, user)
}

// Delete removes a user other than the caller and revokes its external account.
//
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Failure      422  {object}  Envelope
// @Failure      502  {object}  Envelope
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p.ID, c.Param("id")); err != nil {
		return err
	}

	h.metrics.Mutation("user", "delete")
	return respondMessage(c, http.StatusOK, nil, "user deleted")
}
