package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusdesk/booking-api/internal/models"
	appErrors "github.com/campusdesk/booking-api/pkg/errors"
)

type slotRepository interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.AvailabilitySlot, error)
	ListOpenByTeacher(ctx context.Context, teacherID string, from time.Time) ([]models.AvailabilitySlot, error)
	Create(ctx context.Context, slot *models.AvailabilitySlot) error
	Delete(ctx context.Context, id, teacherID string) (int64, error)
}

// CreateSlotRequest is the payload for publishing a new availability slot.
type CreateSlotRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// SlotService manages a teacher's availability slots.
type SlotService struct {
	repo      slotRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSlotService constructs a SlotService.
func NewSlotService(repo slotRepository, validate *validator.Validate, logger *zap.Logger) *SlotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SlotService{repo: repo, validator: validate, logger: logger}
}

// ListOwn returns every slot owned by the calling teacher, booked or not.
func (s *SlotService) ListOwn(ctx context.Context, teacherID string) ([]models.AvailabilitySlot, error) {
	slots, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slots")
	}
	if slots == nil {
		slots = []models.AvailabilitySlot{}
	}
	return slots, nil
}

// ListOpenForTeacher returns the teacher's open future slots for the
// public booking view.
func (s *SlotService) ListOpenForTeacher(ctx context.Context, teacherID string) ([]models.AvailabilitySlot, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	slots, err := s.repo.ListOpenByTeacher(ctx, teacherID, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list open slots")
	}
	if slots == nil {
		slots = []models.AvailabilitySlot{}
	}
	return slots, nil
}

// Create publishes a new slot for the teacher. Date, start time and end
// time are all required; the slot always starts out open.
func (s *SlotService) Create(ctx context.Context, teacherID string, req CreateSlotRequest) (*models.AvailabilitySlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date, start time and end time are required")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be in YYYY-MM-DD format")
	}

	slot := &models.AvailabilitySlot{
		TeacherID: teacherID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create slot")
	}
	return slot, nil
}

// Delete removes one of the teacher's own open slots. When the slot does
// not exist, belongs to someone else, or is already booked, nothing is
// removed and the call still succeeds.
func (s *SlotService) Delete(ctx context.Context, teacherID, slotID string) error {
	rows, err := s.repo.Delete(ctx, slotID, teacherID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete slot")
	}
	if rows == 0 {
		s.logger.Debug("slot delete removed nothing",
			zap.String("slot_id", slotID),
			zap.String("teacher_id", teacherID))
	}
	return nil
}
