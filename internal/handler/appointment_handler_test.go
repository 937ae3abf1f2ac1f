package handler

import (
	"bytes"
	"context"
	"database/sql"
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
	"github.com/campusdesk/booking-api/internal/repository"
	"github.com/campusdesk/booking-api/internal/service"
	"github.com/campusdesk/booking-api/pkg/response"
)

type appointmentRepoStub struct {
	bookResult *models.Appointment
	bookErr    error
	byTeacher  []models.AppointmentDetail
	byStudent  []models.AppointmentDetail
	findResult *models.Appointment
	findErr    error
}

func (s *appointmentRepoStub) Book(ctx context.Context, studentID, teacherID, slotID, message string) (*models.Appointment, error) {
	if s.bookErr != nil {
		return nil, s.bookErr
	}
	return s.bookResult, nil
}

func (s *appointmentRepoStub) ListByStudent(ctx context.Context, studentID string) ([]models.AppointmentDetail, error) {
	return s.byStudent, nil
}

func (s *appointmentRepoStub) ListByTeacher(ctx context.Context, teacherID string) ([]models.AppointmentDetail, error) {
	return s.byTeacher, nil
}

func (s *appointmentRepoStub) FindByIDForTeacher(ctx context.Context, id, teacherID string) (*models.Appointment, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.findResult, nil
}

func (s *appointmentRepoStub) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus, teacherNote *string) error {
	return nil
}

func newAppointmentTestContext(t *testing.T, method, target string, body []byte, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}
}

func teacherClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher}
}

func bookBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(service.BookAppointmentRequest{
		TeacherID: "a6f1f1de-64a4-4dcf-9e25-1bc1efc83084",
		SlotID:    "3f2c0f4e-5df0-4a60-9efb-8dbb62f2f0d8",
		Message:   "exam preparation",
	})
	require.NoError(t, err)
	return body
}

func TestAppointmentHandlerBook(t *testing.T) {
	repo := &appointmentRepoStub{bookResult: &models.Appointment{
		ID:     "appt-1",
		Status: models.StatusPending,
		Date:   time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
	}}
	handler := NewAppointmentHandler(service.NewAppointmentService(repo, nil, nil, nil))

	c, w := newAppointmentTestContext(t, http.MethodPost, "/student/appointments", bookBody(t), studentClaims())
	handler.Book(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
}

func TestAppointmentHandlerBookConflict(t *testing.T) {
	repo := &appointmentRepoStub{bookErr: repository.ErrSlotTaken}
	handler := NewAppointmentHandler(service.NewAppointmentService(repo, nil, nil, nil))

	c, w := newAppointmentTestContext(t, http.MethodPost, "/student/appointments", bookBody(t), studentClaims())
	handler.Book(c)

	require.Equal(t, http.StatusConflict, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "CONFLICT", envelope.Error.Code)
}

func TestAppointmentHandlerBookSlotMissing(t *testing.T) {
	repo := &appointmentRepoStub{bookErr: sql.ErrNoRows}
	handler := NewAppointmentHandler(service.NewAppointmentService(repo, nil, nil, nil))

	c, w := newAppointmentTestContext(t, http.MethodPost, "/student/appointments", bookBody(t), studentClaims())
	handler.Book(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAppointmentHandlerBookUnauthenticated(t *testing.T) {
	handler := NewAppointmentHandler(service.NewAppointmentService(&appointmentRepoStub{}, nil, nil, nil))

	c, w := newAppointmentTestContext(t, http.MethodPost, "/student/appointments", bookBody(t), nil)
	handler.Book(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAppointmentHandlerUpdateStatusIllegalTransition(t *testing.T) {
	repo := &appointmentRepoStub{findResult: &models.Appointment{ID: "appt-1", Status: models.StatusCancelled}}
	handler := NewAppointmentHandler(service.NewAppointmentService(repo, nil, nil, nil))

	body, err := json.Marshal(service.UpdateAppointmentStatusRequest{Status: models.StatusApproved})
	require.NoError(t, err)

	c, w := newAppointmentTestContext(t, http.MethodPatch, "/teacher/appointments/appt-1", body, teacherClaims())
	c.Params = gin.Params{{Key: "id", Value: "appt-1"}}
	handler.UpdateStatus(c)

	require.Equal(t, http.StatusConflict, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_TRANSITION", envelope.Error.Code)
}

func TestAppointmentHandlerUpdateStatusForeignAppointment(t *testing.T) {
	repo := &appointmentRepoStub{findErr: sql.ErrNoRows}
	handler := NewAppointmentHandler(service.NewAppointmentService(repo, nil, nil, nil))

	body, err := json.Marshal(service.UpdateAppointmentStatusRequest{Status: models.StatusApproved})
	require.NoError(t, err)

	c, w := newAppointmentTestContext(t, http.MethodPatch, "/teacher/appointments/appt-1", body, teacherClaims())
	c.Params = gin.Params{{Key: "id", Value: "appt-1"}}
	handler.UpdateStatus(c)

	// Cross-owner access reads as not found, never forbidden.
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAppointmentHandlerListForTeacher(t *testing.T) {
	repo := &appointmentRepoStub{byTeacher: []models.AppointmentDetail{{
		Appointment: models.Appointment{ID: "appt-1", Status: models.StatusPending},
		StudentName: "Pat Student",
	}}}
	handler := NewAppointmentHandler(service.NewAppointmentService(repo, nil, nil, nil))

	c, w := newAppointmentTestContext(t, http.MethodGet, "/teacher/appointments", nil, teacherClaims())
	handler.ListForTeacher(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Pat Student")
}
