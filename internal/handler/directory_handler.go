package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/booking-api/internal/service"
	"github.com/campusdesk/booking-api/pkg/response"
)

// DirectoryHandler exposes the public teacher directory.
type DirectoryHandler struct {
	service *service.DirectoryService
}

// NewDirectoryHandler creates a new handler.
func NewDirectoryHandler(svc *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: svc}
}

// Search godoc
// @Summary Search teachers
// @Description Find teachers by name, department or subject; empty query lists all
// @Tags Directory
// @Produce json
// @Param query query string false "Search query"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *DirectoryHandler) Search(c *gin.Context) {
	listings, err := h.service.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, listings, nil)
}

// Detail godoc
// @Summary Teacher detail
// @Description Return a teacher's public profile with their open slots
// @Tags Directory
// @Produce json
// @Param id path string true "Teacher profile ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *DirectoryHandler) Detail(c *gin.Context) {
	detail, err := h.service.TeacherByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}
