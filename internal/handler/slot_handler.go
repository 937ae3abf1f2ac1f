package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/booking-api/internal/service"
	appErrors "github.com/campusdesk/booking-api/pkg/errors"
	"github.com/campusdesk/booking-api/pkg/response"
)

// SlotHandler exposes the teacher's availability slot management.
type SlotHandler struct {
	service *service.SlotService
}

// NewSlotHandler creates a new handler.
func NewSlotHandler(svc *service.SlotService) *SlotHandler {
	return &SlotHandler{service: svc}
}

// List godoc
// @Summary List own availability slots
// @Description Return every slot owned by the calling teacher
// @Tags Slots
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /teacher/slots [get]
func (h *SlotHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	slots, err := h.service.ListOwn(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, slots, nil)
}

// Create godoc
// @Summary Publish availability slot
// @Description Create a new open slot for the calling teacher
// @Tags Slots
// @Accept json
// @Produce json
// @Param payload body service.CreateSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teacher/slots [post]
func (h *SlotHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}

	slot, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, slot)
}

// Delete godoc
// @Summary Delete availability slot
// @Description Remove an open slot; booked or foreign slots are left untouched
// @Tags Slots
// @Produce json
// @Param id path string true "Slot ID"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /teacher/slots/{id} [delete]
func (h *SlotHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
