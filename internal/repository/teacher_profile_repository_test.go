package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newTeacherRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func teacherListingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "department", "subject", "bio", "is_approved",
		"notify_email", "notify_reminders", "notify_new_bookings", "created_at", "updated_at",
		"full_name", "email"}).
		AddRow("prof-1", "teacher-1", "Mathematics", "Calculus", nil, true,
			true, true, true, time.Now(), time.Now(),
			"Lee Teacher", "lee@example.com")
}

func TestTeacherProfileRepositorySearchWithQuery(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()

	repo := NewTeacherProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("LOWER(u.full_name) LIKE $1 OR LOWER(p.department) LIKE $1 OR LOWER(p.subject) LIKE $1")).
		WithArgs("%math%").
		WillReturnRows(teacherListingRows())

	listings, err := repo.Search(context.Background(), "  Math ")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	require.Equal(t, "Lee Teacher", listings[0].FullName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherProfileRepositorySearchEmptyQueryListsAll(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()

	repo := NewTeacherProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM teacher_profiles p JOIN users u ON u.id = p.user_id ORDER BY u.full_name ASC")).
		WillReturnRows(teacherListingRows())

	listings, err := repo.Search(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherProfileRepositoryUpdateProfile(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()

	repo := NewTeacherProfileRepository(db)

	bio := "office hours tuesdays"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE teacher_profiles SET department = $2, subject = $3, bio = $4")).
		WithArgs("teacher-1", "Physics", "Mechanics", &bio, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateProfile(context.Background(), "teacher-1", "Physics", "Mechanics", &bio))
	require.NoError(t, mock.ExpectationsWereMet())
}
