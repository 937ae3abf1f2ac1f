package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusdesk/booking-api/internal/models"
	appErrors "github.com/campusdesk/booking-api/pkg/errors"
)

type mockRegistrationUserRepo struct {
	emailTaken     bool
	createdUser    *models.User
	createdStudent *models.StudentProfile
	createdTeacher *models.TeacherProfile
}

func (m *mockRegistrationUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.emailTaken, nil
}

func (m *mockRegistrationUserRepo) CreateStudent(ctx context.Context, user *models.User, profile *models.StudentProfile) error {
	user.ID = "user-1"
	m.createdUser = user
	m.createdStudent = profile
	return nil
}

func (m *mockRegistrationUserRepo) CreateTeacher(ctx context.Context, user *models.User, profile *models.TeacherProfile) error {
	user.ID = "user-2"
	m.createdUser = user
	m.createdTeacher = profile
	return nil
}

type mockRegistrationStudentRepo struct {
	numberTaken bool
}

func (m *mockRegistrationStudentRepo) ExistsByStudentNumber(ctx context.Context, studentNumber string) (bool, error) {
	return m.numberTaken, nil
}

func validStudentRequest() RegisterStudentRequest {
	return RegisterStudentRequest{
		Email:         "new@example.com",
		Password:      "secret-pass",
		FullName:      "New Student",
		StudentNumber: "S-1001",
		Course:        "Computer Science",
		Year:          "2",
	}
}

func TestRegistrationServiceRegisterStudent(t *testing.T) {
	users := &mockRegistrationUserRepo{}
	audit := &mockAudit{}
	svc := NewRegistrationService(users, &mockRegistrationStudentRepo{}, audit, nil, nil)

	user, err := svc.RegisterStudent(context.Background(), validStudentRequest())
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	require.NotNil(t, users.createdStudent)
	// New students start unapproved and cannot book yet.
	assert.False(t, users.createdStudent.IsApproved)
	// The password is stored hashed, never verbatim.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret-pass")))
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionRegister, audit.entries[0].Action)
}

func TestRegistrationServiceRegisterStudentDuplicateEmail(t *testing.T) {
	svc := NewRegistrationService(&mockRegistrationUserRepo{emailTaken: true}, &mockRegistrationStudentRepo{}, nil, nil, nil)

	_, err := svc.RegisterStudent(context.Background(), validStudentRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRegistrationServiceRegisterStudentDuplicateNumber(t *testing.T) {
	svc := NewRegistrationService(&mockRegistrationUserRepo{}, &mockRegistrationStudentRepo{numberTaken: true}, nil, nil, nil)

	_, err := svc.RegisterStudent(context.Background(), validStudentRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRegistrationServiceRegisterStudentValidation(t *testing.T) {
	svc := NewRegistrationService(&mockRegistrationUserRepo{}, &mockRegistrationStudentRepo{}, nil, nil, nil)

	req := validStudentRequest()
	req.Password = "short"
	_, err := svc.RegisterStudent(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRegistrationServiceRegisterTeacher(t *testing.T) {
	users := &mockRegistrationUserRepo{}
	svc := NewRegistrationService(users, &mockRegistrationStudentRepo{}, nil, nil, nil)

	user, err := svc.RegisterTeacher(context.Background(), "admin-1", RegisterTeacherRequest{
		Email:      "teach@example.com",
		Password:   "secret-pass",
		FullName:   "New Teacher",
		Department: "Physics",
		Subject:    "Mechanics",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, user.Role)
	require.NotNil(t, users.createdTeacher)
	// Admin-created teacher accounts are live immediately.
	assert.True(t, users.createdTeacher.IsApproved)
}
