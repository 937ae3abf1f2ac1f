package models

import "time"

// AvailabilitySlot is a single bookable time window published by a teacher.
// The teacher reference is the user id, not the profile id. Once is_booked
// flips to true it never reverts, even if the appointment is later cancelled.
type AvailabilitySlot struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Date      time.Time `db:"date" json:"date"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	IsBooked  bool      `db:"is_booked" json:"is_booked"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
