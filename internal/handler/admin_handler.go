package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/booking-api/internal/models"
	"github.com/campusdesk/booking-api/internal/service"
	appErrors "github.com/campusdesk/booking-api/pkg/errors"
	"github.com/campusdesk/booking-api/pkg/response"
)

// AdminHandler exposes the admin oversight endpoints.
type AdminHandler struct {
	admin        *service.AdminService
	registration *service.RegistrationService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(admin *service.AdminService, registration *service.RegistrationService) *AdminHandler {
	return &AdminHandler{admin: admin, registration: registration}
}

// ListStudents godoc
// @Summary List students
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/students [get]
func (h *AdminHandler) ListStudents(c *gin.Context) {
	students, err := h.admin.ListStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// SetStudentApproval godoc
// @Summary Approve or revoke a student account
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Student profile ID"
// @Param payload body map[string]bool true "Approval payload"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{id}/approval [patch]
func (h *AdminHandler) SetStudentApproval(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		Approved *bool `json:"approved" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "approved flag required"))
		return
	}

	if err := h.admin.SetStudentApproval(c.Request.Context(), claims.UserID, c.Param("id"), *payload.Approved); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListTeachers godoc
// @Summary List teachers
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/teachers [get]
func (h *AdminHandler) ListTeachers(c *gin.Context) {
	teachers, err := h.admin.ListTeachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// CreateTeacher godoc
// @Summary Create a teacher account
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body service.RegisterTeacherRequest true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/teachers [post]
func (h *AdminHandler) CreateTeacher(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.RegisterTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teacher payload"))
		return
	}

	user, err := h.registration.RegisterTeacher(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, models.UserInfo{ID: user.ID, Email: user.Email, FullName: user.FullName, Role: user.Role})
}

// ListAppointments godoc
// @Summary List all appointments
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/appointments [get]
func (h *AdminHandler) ListAppointments(c *gin.Context) {
	appointments, err := h.admin.ListAppointments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointments, nil)
}

// ExportAppointments godoc
// @Summary Export appointments
// @Description Download every appointment as CSV or PDF
// @Tags Admin
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /admin/appointments/export [get]
func (h *AdminHandler) ExportAppointments(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	result, err := h.admin.ExportAppointments(c.Request.Context(), service.ExportFormat(format))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
