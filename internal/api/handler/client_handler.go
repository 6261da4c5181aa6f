package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/synergia/erp-api/internal/api/metrics"
	"github.com/synergia/erp-api/internal/core/domain"
	"github.com/synergia/erp-api/internal/core/ports"
)

// ClientHandler handles HTTP requests for client operations.
type ClientHandler struct {
	service ports.ClientService
	metrics *metrics.Metrics
}

func NewClientHandler(service ports.ClientService, m *metrics.Metrics) *ClientHandler {
	return &ClientHandler{service: service, metrics: m}
}

// List returns all clients with their project counts, newest first.
//
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=[]domain.ClientSummary}
// @Failure      401  {object}  Envelope
// @Router       /clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	clients, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if clients == nil {
		clients = []domain.ClientSummary{}
	}
	return respond(c, http.StatusOK, clients)
}

// Get returns one client with its projects.
//
// @Summary      Get client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  Envelope{data=domain.ClientDetail}
// @Failure      404  {object}  Envelope
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	client, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, client)
}

// Create registers a new client. Status defaults to LEAD.
//
// @Summary      Create client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createClientRequest  true  "Client"
// @Success      201   {object}  Envelope{data=domain.Client}
// @Failure      400   {object}  Envelope
// @Router       /clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	var req createClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	client, err := h.service.Create(c.Request().Context(), ports.CreateClientInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Status:  domain.ClientStatus(req.Status),
	})
	if err != nil {
		return err
	}

	h.metrics.Mutation("client", "create")
	return respond(c, http.StatusCreated, client)
}

// Update applies a sparse patch: absent keys are untouched, an explicit null
// clears phone or address.
//
// @Summary      Update client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Client ID"
// @Param        body  body      updateClientRequest  true  "Fields to change"
// @Success      200   {object}  Envelope{data=domain.Client}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c echo.Context) error {
	var req updateClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	client, err := h.service.Update(c.Request().Context(), c.Param("id"), req.patch())
	if err != nil {
		return err
	}

	h.metrics.Mutation("client", "update")
	return respond(c, http.StatusOK, client)
}

// Delete removes the client and all of its projects.
//
// @Summary      Delete client (cascades to projects)
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	h.metrics.Mutation("client", "delete")
	return respondMessage(c, http.StatusOK, nil, "client deleted")
}
