package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/booking-api/internal/models"
)

func newAppointmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func slotRows(id, teacherID string, booked bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "teacher_id", "date", "start_time", "end_time", "is_booked", "created_at", "updated_at"}).
		AddRow(id, teacherID, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), "10:00", "10:30", booked, time.Now(), time.Now())
}

func TestAppointmentRepositoryBook(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()

	repo := NewAppointmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_id, date, start_time, end_time, is_booked, created_at, updated_at FROM availability_slots WHERE id = $1")).
		WithArgs("slot-1").
		WillReturnRows(slotRows("slot-1", "teacher-1", false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE availability_slots SET is_booked = TRUE, updated_at = $2 WHERE id = $1 AND is_booked = FALSE")).
		WithArgs("slot-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	appointment, err := repo.Book(context.Background(), "student-1", "teacher-1", "slot-1", "need help with calculus")
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, appointment.Status)
	require.Equal(t, "teacher-1", appointment.TeacherID)
	require.Equal(t, "slot-1", appointment.SlotID)
	require.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), appointment.Date)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryBookSlotTaken(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()

	repo := NewAppointmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_id, date, start_time, end_time, is_booked, created_at, updated_at FROM availability_slots WHERE id = $1")).
		WithArgs("slot-1").
		WillReturnRows(slotRows("slot-1", "teacher-1", true))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE availability_slots SET is_booked = TRUE")).
		WithArgs("slot-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), "student-1", "teacher-1", "slot-1", "hello")
	require.ErrorIs(t, err, ErrSlotTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryBookSlotMissing(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()

	repo := NewAppointmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM availability_slots WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), "student-1", "teacher-1", "missing", "hello")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryBookTeacherMismatch(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()

	repo := NewAppointmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM availability_slots WHERE id = $1")).
		WithArgs("slot-1").
		WillReturnRows(slotRows("slot-1", "teacher-2", false))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), "student-1", "teacher-1", "slot-1", "hello")
	require.ErrorIs(t, err, ErrTeacherMismatch)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryFindByIDForTeacherScoped(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()

	repo := NewAppointmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE id = $1 AND teacher_id = $2")).
		WithArgs("appt-1", "other-teacher").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByIDForTeacher(context.Background(), "appt-1", "other-teacher")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()

	repo := NewAppointmentRepository(db)

	note := "see you then"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET status = $2, teacher_note = COALESCE($3, teacher_note)")).
		WithArgs("appt-1", models.StatusApproved, &note, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "appt-1", models.StatusApproved, &note))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()

	repo := NewAppointmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "teacher_id", "slot_id", "date", "status", "message", "teacher_note", "created_at", "updated_at", "student_name", "student_email", "teacher_name", "teacher_email"}).
		AddRow("appt-1", "student-1", "teacher-1", "slot-1", time.Now(), "pending", "hi", nil, time.Now(), time.Now(), "Pat Student", "pat@example.com", "Lee Teacher", "lee@example.com")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.student_id = $1")).
		WithArgs("student-1").
		WillReturnRows(rows)

	appointments, err := repo.ListByStudent(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, appointments, 1)
	require.Equal(t, "Lee Teacher", appointments[0].TeacherName)
	require.NoError(t, mock.ExpectationsWereMet())
}
