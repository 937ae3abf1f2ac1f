package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/booking-api/internal/middleware"
	"github.com/campusdesk/booking-api/internal/models"
	"github.com/campusdesk/booking-api/internal/service"
)

type slotRepoStub struct {
	slots      []models.AvailabilitySlot
	deleteRows int64
	deleted    [2]string
}

func (s *slotRepoStub) ListByTeacher(ctx context.Context, teacherID string) ([]models.AvailabilitySlot, error) {
	return s.slots, nil
}

func (s *slotRepoStub) ListOpenByTeacher(ctx context.Context, teacherID string, from time.Time) ([]models.AvailabilitySlot, error) {
	return s.slots, nil
}

func (s *slotRepoStub) Create(ctx context.Context, slot *models.AvailabilitySlot) error {
	slot.ID = "slot-1"
	return nil
}

func (s *slotRepoStub) Delete(ctx context.Context, id, teacherID string) (int64, error) {
	s.deleted = [2]string{id, teacherID}
	return s.deleteRows, nil
}

func newSlotTestContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
	return c, w
}

func TestSlotHandlerCreate(t *testing.T) {
	repo := &slotRepoStub{}
	handler := NewSlotHandler(service.NewSlotService(repo, nil, nil))

	body, err := json.Marshal(service.CreateSlotRequest{Date: "2026-09-15", StartTime: "10:00", EndTime: "10:30"})
	require.NoError(t, err)

	c, w := newSlotTestContext(t, http.MethodPost, "/teacher/slots", body)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "slot-1")
}

func TestSlotHandlerCreateMissingFields(t *testing.T) {
	handler := NewSlotHandler(service.NewSlotService(&slotRepoStub{}, nil, nil))

	body, err := json.Marshal(service.CreateSlotRequest{StartTime: "10:00"})
	require.NoError(t, err)

	c, w := newSlotTestContext(t, http.MethodPost, "/teacher/slots", body)
	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestSlotHandlerDeleteAlwaysNoContent(t *testing.T) {
	// Whether or not a row was removed, the delete endpoint reports 204.
	repo := &slotRepoStub{deleteRows: 0}
	handler := NewSlotHandler(service.NewSlotService(repo, nil, nil))

	c, w := newSlotTestContext(t, http.MethodDelete, "/teacher/slots/slot-9", nil)
	c.Params = gin.Params{{Key: "id", Value: "slot-9"}}
	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, [2]string{"slot-9", "teacher-1"}, repo.deleted)
}

func TestSlotHandlerList(t *testing.T) {
	repo := &slotRepoStub{slots: []models.AvailabilitySlot{{ID: "slot-1", TeacherID: "teacher-1", StartTime: "09:00", EndTime: "09:30"}}}
	handler := NewSlotHandler(service.NewSlotService(repo, nil, nil))

	c, w := newSlotTestContext(t, http.MethodGet, "/teacher/slots", nil)
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "slot-1")
}
