package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campusdesk/booking-api/internal/models"
)

const teacherListingColumns = `p.id, p.user_id, p.department, p.subject, p.bio, p.is_approved,
	p.notify_email, p.notify_reminders, p.notify_new_bookings, p.created_at, p.updated_at,
	u.full_name, u.email`

// TeacherProfileRepository manages persistence for teacher profiles and the
// public directory projection.
type TeacherProfileRepository struct {
	db *sqlx.DB
}

// NewTeacherProfileRepository constructs a TeacherProfileRepository.
func NewTeacherProfileRepository(db *sqlx.DB) *TeacherProfileRepository {
	return &TeacherProfileRepository{db: db}
}

// Search returns teacher listings whose name, department or subject contains
// the query, case-insensitively. An empty query matches everything.
func (r *TeacherProfileRepository) Search(ctx context.Context, query string) ([]models.TeacherListing, error) {
	base := fmt.Sprintf(`SELECT %s FROM teacher_profiles p JOIN users u ON u.id = p.user_id`, teacherListingColumns)
	var args []interface{}
	if trimmed := strings.TrimSpace(query); trimmed != "" {
		pattern := "%" + strings.ToLower(trimmed) + "%"
		base += ` WHERE LOWER(u.full_name) LIKE $1 OR LOWER(p.department) LIKE $1 OR LOWER(p.subject) LIKE $1`
		args = append(args, pattern)
	}
	base += ` ORDER BY u.full_name ASC`

	var listings []models.TeacherListing
	if err := r.db.SelectContext(ctx, &listings, base, args...); err != nil {
		return nil, fmt.Errorf("search teachers: %w", err)
	}
	return listings, nil
}

// FindByID fetches a teacher listing by profile ID.
func (r *TeacherProfileRepository) FindByID(ctx context.Context, id string) (*models.TeacherListing, error) {
	query := fmt.Sprintf(`SELECT %s FROM teacher_profiles p JOIN users u ON u.id = p.user_id WHERE p.id = $1`, teacherListingColumns)
	var listing models.TeacherListing
	if err := r.db.GetContext(ctx, &listing, query, id); err != nil {
		return nil, err
	}
	return &listing, nil
}

// FindByUserID fetches the profile owned by the given user.
func (r *TeacherProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error) {
	const query = `SELECT id, user_id, department, subject, bio, is_approved, notify_email, notify_reminders, notify_new_bookings, created_at, updated_at FROM teacher_profiles WHERE user_id = $1`
	var profile models.TeacherProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile changes the teacher-editable profile fields.
func (r *TeacherProfileRepository) UpdateProfile(ctx context.Context, userID, department, subject string, bio *string) error {
	const query = `UPDATE teacher_profiles SET department = $2, subject = $3, bio = $4, updated_at = $5 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, department, subject, bio, time.Now().UTC()); err != nil {
		return fmt.Errorf("update teacher profile: %w", err)
	}
	return nil
}

// UpdateNotifications persists the notification preference flags.
func (r *TeacherProfileRepository) UpdateNotifications(ctx context.Context, userID string, email, reminders, newBookings bool) error {
	const query = `UPDATE teacher_profiles SET notify_email = $2, notify_reminders = $3, notify_new_bookings = $4, updated_at = $5 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, email, reminders, newBookings, time.Now().UTC()); err != nil {
		return fmt.Errorf("update teacher notifications: %w", err)
	}
	return nil
}
