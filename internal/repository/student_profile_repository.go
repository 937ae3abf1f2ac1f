package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campusdesk/booking-api/internal/models"
)

// StudentProfileRepository manages persistence for student profiles and the
// admin approval gate.
type StudentProfileRepository struct {
	db *sqlx.DB
}

// NewStudentProfileRepository constructs a StudentProfileRepository.
func NewStudentProfileRepository(db *sqlx.DB) *StudentProfileRepository {
	return &StudentProfileRepository{db: db}
}

// List returns every student profile joined with user display fields,
// newest first. Admin approval view.
func (r *StudentProfileRepository) List(ctx context.Context) ([]models.StudentListing, error) {
	const query = `SELECT p.id, p.user_id, p.student_number, p.course, p.year, p.is_approved, p.created_at, p.updated_at,
			u.full_name, u.email
		FROM student_profiles p JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC`
	var listings []models.StudentListing
	if err := r.db.SelectContext(ctx, &listings, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return listings, nil
}

// FindByUserID fetches the profile owned by the given user.
func (r *StudentProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	const query = `SELECT id, user_id, student_number, course, year, is_approved, created_at, updated_at FROM student_profiles WHERE user_id = $1`
	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ExistsByStudentNumber checks the unique student number constraint up front.
func (r *StudentProfileRepository) ExistsByStudentNumber(ctx context.Context, studentNumber string) (bool, error) {
	const query = `SELECT 1 FROM student_profiles WHERE student_number = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentNumber); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student number: %w", err)
	}
	return true, nil
}

// SetApproval flips the approval flag on a student profile.
func (r *StudentProfileRepository) SetApproval(ctx context.Context, id string, approved bool) (int64, error) {
	const query = `UPDATE student_profiles SET is_approved = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, approved, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("set student approval: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("set student approval rows: %w", err)
	}
	return rows, nil
}
