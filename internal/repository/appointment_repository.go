package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusdesk/booking-api/internal/models"
)

// Sentinel errors surfaced by the booking transaction. The service layer
// maps them onto the API error taxonomy.
var (
	// ErrSlotTaken means the conditional reservation update matched no row
	// because another booking already flipped the slot.
	ErrSlotTaken = errors.New("slot already booked")
	// ErrTeacherMismatch means the requested teacher does not own the slot.
	ErrTeacherMismatch = errors.New("slot does not belong to teacher")
)

const appointmentColumns = "id, student_id, teacher_id, slot_id, date, status, message, teacher_note, created_at, updated_at"

// AppointmentRepository manages persistence for appointments, including the
// atomic slot reservation that creates them.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository constructs an AppointmentRepository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Book reserves the slot and creates the pending appointment in one
// transaction. The reservation is a conditional update on is_booked, so two
// concurrent bookings of the same slot resolve to exactly one winner: the
// loser's update matches zero rows and the transaction rolls back with
// ErrSlotTaken. Date and teacher are taken from the slot row, never from
// the caller.
func (r *AppointmentRepository) Book(ctx context.Context, studentID, teacherID, slotID, message string) (*models.Appointment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin booking: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var slot models.AvailabilitySlot
	query := fmt.Sprintf(`SELECT %s FROM availability_slots WHERE id = $1`, slotColumns)
	if err := tx.GetContext(ctx, &slot, query, slotID); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("load slot: %w", err)
	}

	if slot.TeacherID != teacherID {
		return nil, ErrTeacherMismatch
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE availability_slots SET is_booked = TRUE, updated_at = $2 WHERE id = $1 AND is_booked = FALSE`,
		slotID, now)
	if err != nil {
		return nil, fmt.Errorf("reserve slot: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("reserve slot rows: %w", err)
	}
	if rows == 0 {
		return nil, ErrSlotTaken
	}

	appointment := &models.Appointment{
		ID:        uuid.NewString(),
		StudentID: studentID,
		TeacherID: slot.TeacherID,
		SlotID:    slot.ID,
		Date:      slot.Date,
		Status:    models.StatusPending,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	const insert = `INSERT INTO appointments (id, student_id, teacher_id, slot_id, date, status, message, created_at, updated_at)
		VALUES (:id, :student_id, :teacher_id, :slot_id, :date, :status, :message, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insert, appointment); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit booking: %w", err)
	}
	return appointment, nil
}

// ListByStudent returns the student's appointments with the teacher's
// display fields attached, ascending by date.
func (r *AppointmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.AppointmentDetail, error) {
	const query = `SELECT a.id, a.student_id, a.teacher_id, a.slot_id, a.date, a.status, a.message, a.teacher_note, a.created_at, a.updated_at,
			s.full_name AS student_name, s.email AS student_email,
			t.full_name AS teacher_name, t.email AS teacher_email
		FROM appointments a
		JOIN users s ON s.id = a.student_id
		JOIN users t ON t.id = a.teacher_id
		WHERE a.student_id = $1
		ORDER BY a.date ASC`
	var appointments []models.AppointmentDetail
	if err := r.db.SelectContext(ctx, &appointments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student appointments: %w", err)
	}
	return appointments, nil
}

// ListByTeacher returns the teacher's appointments with the student's
// display fields attached, ascending by date.
func (r *AppointmentRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.AppointmentDetail, error) {
	const query = `SELECT a.id, a.student_id, a.teacher_id, a.slot_id, a.date, a.status, a.message, a.teacher_note, a.created_at, a.updated_at,
			s.full_name AS student_name, s.email AS student_email,
			t.full_name AS teacher_name, t.email AS teacher_email
		FROM appointments a
		JOIN users s ON s.id = a.student_id
		JOIN users t ON t.id = a.teacher_id
		WHERE a.teacher_id = $1
		ORDER BY a.date ASC`
	var appointments []models.AppointmentDetail
	if err := r.db.SelectContext(ctx, &appointments, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher appointments: %w", err)
	}
	return appointments, nil
}

// ListAll returns every appointment with both parties resolved, newest
// first. Admin oversight view.
func (r *AppointmentRepository) ListAll(ctx context.Context) ([]models.AppointmentDetail, error) {
	const query = `SELECT a.id, a.student_id, a.teacher_id, a.slot_id, a.date, a.status, a.message, a.teacher_note, a.created_at, a.updated_at,
			s.full_name AS student_name, s.email AS student_email,
			t.full_name AS teacher_name, t.email AS teacher_email
		FROM appointments a
		JOIN users s ON s.id = a.student_id
		JOIN users t ON t.id = a.teacher_id
		ORDER BY a.created_at DESC`
	var appointments []models.AppointmentDetail
	if err := r.db.SelectContext(ctx, &appointments, query); err != nil {
		return nil, fmt.Errorf("list all appointments: %w", err)
	}
	return appointments, nil
}

// FindByIDForTeacher fetches an appointment scoped to its owning teacher.
// An appointment owned by another teacher is indistinguishable from a
// missing one: both return sql.ErrNoRows.
func (r *AppointmentRepository) FindByIDForTeacher(ctx context.Context, id, teacherID string) (*models.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1 AND teacher_id = $2`, appointmentColumns)
	var appointment models.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id, teacherID); err != nil {
		return nil, err
	}
	return &appointment, nil
}

// UpdateStatus persists a status change and the optional teacher note.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus, teacherNote *string) error {
	const query = `UPDATE appointments SET status = $2, teacher_note = COALESCE($3, teacher_note), updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, teacherNote, time.Now().UTC()); err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	return nil
}
