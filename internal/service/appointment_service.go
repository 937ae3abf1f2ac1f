package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusdesk/booking-api/internal/models"
	"github.com/campusdesk/booking-api/internal/repository"
	appErrors "github.com/campusdesk/booking-api/pkg/errors"
)

type appointmentRepository interface {
	Book(ctx context.Context, studentID, teacherID, slotID, message string) (*models.Appointment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.AppointmentDetail, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.AppointmentDetail, error)
	FindByIDForTeacher(ctx context.Context, id, teacherID string) (*models.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus, teacherNote *string) error
}

// BookAppointmentRequest is the student's booking payload.
type BookAppointmentRequest struct {
	TeacherID string `json:"teacher_id" validate:"required,uuid4"`
	SlotID    string `json:"slot_id" validate:"required,uuid4"`
	Message   string `json:"message" validate:"required"`
}

// UpdateAppointmentStatusRequest is the teacher's status change payload.
type UpdateAppointmentStatusRequest struct {
	Status      models.AppointmentStatus `json:"status" validate:"required"`
	TeacherNote *string                  `json:"teacher_note,omitempty"`
}

type bookingMetricsRecorder interface {
	RecordBooking(outcome string)
	RecordStatusChange(status string)
}

// AppointmentService drives the booking and approval lifecycle.
type AppointmentService struct {
	repo      appointmentRepository
	metrics   bookingMetricsRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAppointmentService constructs an AppointmentService.
func NewAppointmentService(repo appointmentRepository, metrics bookingMetricsRecorder, validate *validator.Validate, logger *zap.Logger) *AppointmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AppointmentService{repo: repo, metrics: metrics, validator: validate, logger: logger}
}

// Book reserves a slot for the student and creates a pending appointment.
// Exactly one of two concurrent bookings of the same slot succeeds; the
// other gets a conflict.
func (s *AppointmentService) Book(ctx context.Context, studentID string, req BookAppointmentRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "teacher, slot and message are required")
	}

	appointment, err := s.repo.Book(ctx, studentID, req.TeacherID, req.SlotID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			s.recordBooking("error")
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		case errors.Is(err, repository.ErrTeacherMismatch):
			s.recordBooking("error")
			return nil, appErrors.Clone(appErrors.ErrValidation, "slot does not belong to the selected teacher")
		case errors.Is(err, repository.ErrSlotTaken):
			s.recordBooking("conflict")
			return nil, appErrors.Clone(appErrors.ErrConflict, "slot is already booked")
		}
		s.recordBooking("error")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to book appointment")
	}

	s.recordBooking("booked")
	s.logger.Info("appointment booked",
		zap.String("appointment_id", appointment.ID),
		zap.String("slot_id", appointment.SlotID),
		zap.String("student_id", studentID))

	return appointment, nil
}

// ListForStudent returns the student's own appointments.
func (s *AppointmentService) ListForStudent(ctx context.Context, studentID string) ([]models.AppointmentDetail, error) {
	appointments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	if appointments == nil {
		appointments = []models.AppointmentDetail{}
	}
	return appointments, nil
}

// ListForTeacher returns the teacher's own appointments.
func (s *AppointmentService) ListForTeacher(ctx context.Context, teacherID string) ([]models.AppointmentDetail, error) {
	appointments, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	if appointments == nil {
		appointments = []models.AppointmentDetail{}
	}
	return appointments, nil
}

// UpdateStatus moves one of the teacher's appointments through the
// lifecycle. Pending goes to approved or cancelled, approved goes to
// completed or cancelled; cancelled and completed are terminal. An
// appointment owned by another teacher is reported as not found.
func (s *AppointmentService) UpdateStatus(ctx context.Context, teacherID, appointmentID string, req UpdateAppointmentStatusRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "status is required")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown appointment status")
	}

	appointment, err := s.repo.FindByIDForTeacher(ctx, appointmentID, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}

	if !appointment.Status.CanTransitionTo(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			"cannot move appointment from "+string(appointment.Status)+" to "+string(req.Status))
	}

	if err := s.repo.UpdateStatus(ctx, appointment.ID, req.Status, req.TeacherNote); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update appointment")
	}

	appointment.Status = req.Status
	if req.TeacherNote != nil {
		appointment.TeacherNote = req.TeacherNote
	}

	if s.metrics != nil {
		s.metrics.RecordStatusChange(string(req.Status))
	}
	s.logger.Info("appointment status updated",
		zap.String("appointment_id", appointment.ID),
		zap.String("status", string(req.Status)))

	return appointment, nil
}

func (s *AppointmentService) recordBooking(outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordBooking(outcome)
}
