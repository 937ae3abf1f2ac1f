package models

import "time"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusApproved  AppointmentStatus = "approved"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// statusTransitions encodes the legal lifecycle moves. Cancelled and
// completed are terminal; only the owning teacher drives transitions.
var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:  {StatusApproved, StatusCancelled},
	StatusApproved: {StatusCompleted, StatusCancelled},
}

// Valid reports whether the status is one of the known lifecycle states.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment binds one student, one teacher and one slot's date, carrying
// the approval lifecycle. The date is copied from the reserved slot at
// booking time. Appointments are never deleted.
type Appointment struct {
	ID          string            `db:"id" json:"id"`
	StudentID   string            `db:"student_id" json:"student_id"`
	TeacherID   string            `db:"teacher_id" json:"teacher_id"`
	SlotID      string            `db:"slot_id" json:"slot_id"`
	Date        time.Time         `db:"date" json:"date"`
	Status      AppointmentStatus `db:"status" json:"status"`
	Message     string            `db:"message" json:"message"`
	TeacherNote *string           `db:"teacher_note" json:"teacher_note,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// AppointmentDetail is an appointment with both parties' display fields
// resolved, used by the read-side list views.
type AppointmentDetail struct {
	Appointment
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
	TeacherName  string `db:"teacher_name" json:"teacher_name"`
	TeacherEmail string `db:"teacher_email" json:"teacher_email"`
}
