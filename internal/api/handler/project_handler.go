package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/synergia/erp-api/internal/api/metrics"
	"github.com/synergia/erp-api/internal/core/domain"
	"github.com/synergia/erp-api/internal/core/ports"
)

// ProjectHandler handles HTTP requests for project operations.
type ProjectHandler struct {
	service ports.ProjectService
	metrics *metrics.Metrics
}

func NewProjectHandler(service ports.ProjectService, m *metrics.Metrics) *ProjectHandler {
	return &ProjectHandler{service: service, metrics: m}
}

// List returns all projects with their client, newest first.
//
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=[]domain.Project}
// @Router       /projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	projects, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return respond(c, http.StatusOK, projects)
}

// Get returns one project with its client.
//
// @Summary      Get project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  Envelope{data=domain.Project}
// @Failure      404  {object}  Envelope
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	project, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, project)
}

// Create registers a project for an existing client. Status defaults to PLANNED.
//
// @Summary      Create project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProjectRequest  true  "Project"
// @Success      201   {object}  Envelope{data=domain.Project}
// @Failure      400   {object}  Envelope
// @Router       /projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	var req createProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	project, err := h.service.Create(c.Request().Context(), ports.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.ProjectStatus(req.Status),
		StartDate:   req.StartDate.ptr(),
		EndDate:     req.EndDate.ptr(),
		ClientID:    req.ClientID,
	})
	if err != nil {
		return err
	}

	h.metrics.Mutation("project", "create")
	return respond(c, http.StatusCreated, project)
}

// Update applies a sparse patch: absent keys are untouched, an explicit null
// clears description, startDate or endDate.
//
// @Summary      Update project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Project ID"
// @Param        body  body      updateProjectRequest  true  "Fields to change"
// @Success      200   {object}  Envelope{data=domain.Project}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	var req updateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	project, err := h.service.Update(c.Request().Context(), c.Param("id"), req.patch())
	if err != nil {
		return err
	}

	h.metrics.Mutation("project", "update")
	return respond(c, http.StatusOK, project)
}

// Delete removes one project.
//
// @Summary      Delete project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	h.metrics.Mutation("project", "delete")
	return respondMessage(c, http.StatusOK, nil, "project deleted")
}
