package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusdesk/booking-api/internal/models"
	appErrors "github.com/campusdesk/booking-api/pkg/errors"
)

type registrationUserRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateStudent(ctx context.Context, user *models.User, profile *models.StudentProfile) error
	CreateTeacher(ctx context.Context, user *models.User, profile *models.TeacherProfile) error
}

type registrationStudentRepository interface {
	ExistsByStudentNumber(ctx context.Context, studentNumber string) (bool, error)
}

// RegisterStudentRequest is the self-service student signup payload.
type RegisterStudentRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	FullName      string `json:"full_name" validate:"required"`
	StudentNumber string `json:"student_number" validate:"required"`
	Course        string `json:"course" validate:"required"`
	Year          string `json:"year" validate:"required"`
	IP            string `json:"-"`
	UserAgent     string `json:"-"`
}

// RegisterTeacherRequest is the admin-created teacher account payload.
type RegisterTeacherRequest struct {
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=6"`
	FullName   string  `json:"full_name" validate:"required"`
	Department string  `json:"department" validate:"required"`
	Subject    string  `json:"subject" validate:"required"`
	Bio        *string `json:"bio,omitempty"`
}

// RegistrationService creates new identities with their role profile.
type RegistrationService struct {
	users     registrationUserRepository
	students  registrationStudentRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(users registrationUserRepository, students registrationStudentRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RegistrationService{users: users, students: students, audit: audit, validator: validate, logger: logger}
}

// RegisterStudent creates a student account. The account starts unapproved
// and cannot book appointments until an admin approves it.
func (s *RegistrationService) RegisterStudent(ctx context.Context, req RegisterStudentRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	taken, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email is already registered")
	}

	numberTaken, err := s.students.ExistsByStudentNumber(ctx, req.StudentNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student number")
	}
	if numberTaken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student number is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         models.RoleStudent,
	}
	profile := &models.StudentProfile{
		StudentNumber: req.StudentNumber,
		Course:        req.Course,
		Year:          req.Year,
		IsApproved:    false,
	}

	if err := s.users.CreateStudent(ctx, user, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student account")
	}

	s.record(&models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionRegister,
		Resource:   "user",
		ResourceID: &user.ID,
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	})

	return user, nil
}

// RegisterTeacher creates a teacher account. Teacher accounts are created
// by admins and are approved from the start.
func (s *RegistrationService) RegisterTeacher(ctx context.Context, actorID string, req RegisterTeacherRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	taken, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         models.RoleTeacher,
	}
	profile := &models.TeacherProfile{
		Department:        req.Department,
		Subject:           req.Subject,
		Bio:               req.Bio,
		IsApproved:        true,
		NotifyEmail:       true,
		NotifyReminders:   true,
		NotifyNewBookings: true,
	}

	if err := s.users.CreateTeacher(ctx, user, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher account")
	}

	s.record(&models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionTeacherCreate,
		Resource:   "user",
		ResourceID: &user.ID,
	})

	return user, nil
}

func (s *RegistrationService) record(entry *models.AuditLog) {
	if s.audit == nil {
		return
	}
	s.audit.Record(entry)
}
