package models

import "time"

// TeacherProfile holds the teacher-facing profile attached 1:1 to a user.
type TeacherProfile struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"user_id"`
	Department        string    `db:"department" json:"department"`
	Subject           string    `db:"subject" json:"subject"`
	Bio               *string   `db:"bio" json:"bio,omitempty"`
	IsApproved        bool      `db:"is_approved" json:"is_approved"`
	NotifyEmail       bool      `db:"notify_email" json:"notify_email"`
	NotifyReminders   bool      `db:"notify_reminders" json:"notify_reminders"`
	NotifyNewBookings bool      `db:"notify_new_bookings" json:"notify_new_bookings"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherListing is a teacher profile joined with the owning user's
// display fields, as returned by the public directory.
type TeacherListing struct {
	TeacherProfile
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
}

// StudentProfile holds the student profile attached 1:1 to a user.
// Students are created unapproved and gated until an admin approves them.
type StudentProfile struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	StudentNumber string    `db:"student_number" json:"student_number"`
	Course        string    `db:"course" json:"course"`
	Year          string    `db:"year" json:"year"`
	IsApproved    bool      `db:"is_approved" json:"is_approved"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// StudentListing is a student profile joined with the owning user's
// display fields, used by the admin approval view.
type StudentListing struct {
	StudentProfile
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
}
