package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/booking-api/internal/models"
	"github.com/campusdesk/booking-api/internal/repository"
	appErrors "github.com/campusdesk/booking-api/pkg/errors"
)

// bookingWorld is shared in-memory state so the slot and appointment
// repositories observe each other's writes, the way the database does.
type bookingWorld struct {
	slots        map[string]*models.AvailabilitySlot
	appointments []*models.Appointment
}

func newBookingWorld() *bookingWorld {
	return &bookingWorld{slots: make(map[string]*models.AvailabilitySlot)}
}

type worldSlotRepo struct {
	world *bookingWorld
}

func (r *worldSlotRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	for _, slot := range r.world.slots {
		if slot.TeacherID == teacherID {
			slots = append(slots, *slot)
		}
	}
	return slots, nil
}

func (r *worldSlotRepo) ListOpenByTeacher(ctx context.Context, teacherID string, from time.Time) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	for _, slot := range r.world.slots {
		if slot.TeacherID == teacherID && !slot.IsBooked && !slot.Date.Before(from) {
			slots = append(slots, *slot)
		}
	}
	return slots, nil
}

func (r *worldSlotRepo) Create(ctx context.Context, slot *models.AvailabilitySlot) error {
	slot.ID = uuid.NewString()
	slot.CreatedAt = time.Now().UTC()
	slot.UpdatedAt = slot.CreatedAt
	r.world.slots[slot.ID] = slot
	return nil
}

func (r *worldSlotRepo) Delete(ctx context.Context, id, teacherID string) (int64, error) {
	slot, ok := r.world.slots[id]
	if !ok || slot.TeacherID != teacherID || slot.IsBooked {
		return 0, nil
	}
	delete(r.world.slots, id)
	return 1, nil
}

type worldAppointmentRepo struct {
	world *bookingWorld
}

func (r *worldAppointmentRepo) Book(ctx context.Context, studentID, teacherID, slotID, message string) (*models.Appointment, error) {
	slot, ok := r.world.slots[slotID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if slot.TeacherID != teacherID {
		return nil, repository.ErrTeacherMismatch
	}
	if slot.IsBooked {
		return nil, repository.ErrSlotTaken
	}
	slot.IsBooked = true
	appointment := &models.Appointment{
		ID:        uuid.NewString(),
		StudentID: studentID,
		TeacherID: slot.TeacherID,
		SlotID:    slot.ID,
		Date:      slot.Date,
		Status:    models.StatusPending,
		Message:   message,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	r.world.appointments = append(r.world.appointments, appointment)
	return appointment, nil
}

func (r *worldAppointmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.AppointmentDetail, error) {
	var details []models.AppointmentDetail
	for _, appointment := range r.world.appointments {
		if appointment.StudentID == studentID {
			details = append(details, models.AppointmentDetail{Appointment: *appointment})
		}
	}
	return details, nil
}

func (r *worldAppointmentRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.AppointmentDetail, error) {
	var details []models.AppointmentDetail
	for _, appointment := range r.world.appointments {
		if appointment.TeacherID == teacherID {
			details = append(details, models.AppointmentDetail{Appointment: *appointment})
		}
	}
	return details, nil
}

func (r *worldAppointmentRepo) FindByIDForTeacher(ctx context.Context, id, teacherID string) (*models.Appointment, error) {
	for _, appointment := range r.world.appointments {
		if appointment.ID == id && appointment.TeacherID == teacherID {
			copied := *appointment
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *worldAppointmentRepo) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus, teacherNote *string) error {
	for _, appointment := range r.world.appointments {
		if appointment.ID == id {
			appointment.Status = status
			appointment.TeacherNote = teacherNote
			appointment.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return sql.ErrNoRows
}

// TestBookingLifecycle walks the whole happy path across the slot and
// appointment services: a teacher publishes a slot, a student books it,
// the slot leaves the public view, both parties see the appointment, and
// the teacher approves it.
func TestBookingLifecycle(t *testing.T) {
	ctx := context.Background()
	world := newBookingWorld()
	slotSvc := NewSlotService(&worldSlotRepo{world: world}, nil, nil)
	appointmentSvc := NewAppointmentService(&worldAppointmentRepo{world: world}, nil, nil, nil)

	teacherID := uuid.NewString()
	studentID := uuid.NewString()
	date := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")

	slot, err := slotSvc.Create(ctx, teacherID, CreateSlotRequest{
		Date:      date,
		StartTime: "10:00",
		EndTime:   "10:30",
	})
	require.NoError(t, err)

	open, err := slotSvc.ListOpenForTeacher(ctx, teacherID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, slot.ID, open[0].ID)

	appointment, err := appointmentSvc.Book(ctx, studentID, BookAppointmentRequest{
		TeacherID: teacherID,
		SlotID:    slot.ID,
		Message:   "would like to discuss the midterm",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, appointment.Status)
	assert.Equal(t, slot.ID, appointment.SlotID)

	open, err = slotSvc.ListOpenForTeacher(ctx, teacherID)
	require.NoError(t, err)
	assert.Empty(t, open)

	_, err = appointmentSvc.Book(ctx, uuid.NewString(), BookAppointmentRequest{
		TeacherID: teacherID,
		SlotID:    slot.ID,
		Message:   "is this slot still free?",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)

	mine, err := appointmentSvc.ListForStudent(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, appointment.ID, mine[0].ID)

	incoming, err := appointmentSvc.ListForTeacher(ctx, teacherID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, appointment.ID, incoming[0].ID)

	note := "see you in room 204"
	approved, err := appointmentSvc.UpdateStatus(ctx, teacherID, appointment.ID, UpdateAppointmentStatusRequest{
		Status:      models.StatusApproved,
		TeacherNote: &note,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)

	mine, err = appointmentSvc.ListForStudent(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.StatusApproved, mine[0].Status)
}
