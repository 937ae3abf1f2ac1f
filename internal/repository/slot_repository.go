package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusdesk/booking-api/internal/models"
)

const slotColumns = "id, teacher_id, date, start_time, end_time, is_booked, created_at, updated_at"

// SlotRepository manages persistence for availability slots.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository constructs a SlotRepository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// ListByTeacher returns every slot owned by the teacher, ascending by date.
func (r *SlotRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.AvailabilitySlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM availability_slots WHERE teacher_id = $1 ORDER BY date ASC, start_time ASC`, slotColumns)
	var slots []models.AvailabilitySlot
	if err := r.db.SelectContext(ctx, &slots, query, teacherID); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

// ListOpenByTeacher returns the teacher's un-booked slots on or after the
// given date, ascending. This is the public booking feed.
func (r *SlotRepository) ListOpenByTeacher(ctx context.Context, teacherID string, from time.Time) ([]models.AvailabilitySlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM availability_slots WHERE teacher_id = $1 AND is_booked = FALSE AND date >= $2 ORDER BY date ASC, start_time ASC`, slotColumns)
	var slots []models.AvailabilitySlot
	if err := r.db.SelectContext(ctx, &slots, query, teacherID, from); err != nil {
		return nil, fmt.Errorf("list open slots: %w", err)
	}
	return slots, nil
}

// FindByID fetches a slot by ID.
func (r *SlotRepository) FindByID(ctx context.Context, id string) (*models.AvailabilitySlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM availability_slots WHERE id = $1`, slotColumns)
	var slot models.AvailabilitySlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create inserts a new open slot.
func (r *SlotRepository) Create(ctx context.Context, slot *models.AvailabilitySlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now
	slot.IsBooked = false

	const query = `INSERT INTO availability_slots (id, teacher_id, date, start_time, end_time, is_booked, created_at, updated_at)
		VALUES (:id, :teacher_id, :date, :start_time, :end_time, :is_booked, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

// Delete removes a slot only when the caller owns it and it is still open.
// A mismatched owner or an already-booked slot deletes nothing; the number
// of removed rows is returned so callers can decide how to report that.
func (r *SlotRepository) Delete(ctx context.Context, id, teacherID string) (int64, error) {
	const query = `DELETE FROM availability_slots WHERE id = $1 AND teacher_id = $2 AND is_booked = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, teacherID)
	if err != nil {
		return 0, fmt.Errorf("delete slot: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete slot rows: %w", err)
	}
	return rows, nil
}
