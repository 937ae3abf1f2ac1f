package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusdesk/booking-api/internal/models"
	appErrors "github.com/campusdesk/booking-api/pkg/errors"
)

type teacherProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error)
	UpdateProfile(ctx context.Context, userID, department, subject string, bio *string) error
	UpdateNotifications(ctx context.Context, userID string, email, reminders, newBookings bool) error
}

type profileNameRepository interface {
	UpdateName(ctx context.Context, id, fullName string) error
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// UpdateTeacherProfileRequest is the teacher settings payload.
type UpdateTeacherProfileRequest struct {
	FullName   string  `json:"full_name" validate:"required"`
	Department string  `json:"department" validate:"required"`
	Subject    string  `json:"subject" validate:"required"`
	Bio        *string `json:"bio,omitempty"`
}

// UpdateNotificationsRequest toggles the teacher's notification preferences.
type UpdateNotificationsRequest struct {
	NotifyEmail       bool `json:"notify_email"`
	NotifyReminders   bool `json:"notify_reminders"`
	NotifyNewBookings bool `json:"notify_new_bookings"`
}

// ProfileService manages the teacher's own profile and settings. Profile
// edits invalidate the cached directory so search reflects them promptly.
type ProfileService struct {
	profiles  teacherProfileRepository
	users     profileNameRepository
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(profiles teacherProfileRepository, users profileNameRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{profiles: profiles, users: users, cache: cache, validator: validate, logger: logger}
}

// Get returns the teacher's own profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.TeacherProfile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// Update changes the teacher's display name and profile fields.
func (s *ProfileService) Update(ctx context.Context, userID string, req UpdateTeacherProfileRequest) (*models.TeacherProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.users.UpdateName(ctx, userID, req.FullName); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update name")
	}
	if err := s.profiles.UpdateProfile(ctx, userID, req.Department, req.Subject, req.Bio); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	s.invalidateDirectory(ctx)
	return s.Get(ctx, userID)
}

// UpdateNotifications toggles the notification preference flags.
func (s *ProfileService) UpdateNotifications(ctx context.Context, userID string, req UpdateNotificationsRequest) (*models.TeacherProfile, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.profiles.UpdateNotifications(ctx, userID, req.NotifyEmail, req.NotifyReminders, req.NotifyNewBookings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notifications")
	}

	return s.Get(ctx, userID)
}

func (s *ProfileService) invalidateDirectory(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, directoryCachePrefix+"*"); err != nil {
		s.logger.Warn("failed to invalidate directory cache", zap.Error(err))
	}
}
