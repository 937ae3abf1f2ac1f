package service

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusdesk/booking-api/internal/models"
	appErrors "github.com/campusdesk/booking-api/pkg/errors"
)

const directoryCachePrefix = "directory:teachers:"

type directoryRepository interface {
	Search(ctx context.Context, query string) ([]models.TeacherListing, error)
	FindByID(ctx context.Context, id string) (*models.TeacherListing, error)
}

type directoryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type directorySlotLister interface {
	ListOpenForTeacher(ctx context.Context, teacherID string) ([]models.AvailabilitySlot, error)
}

type cacheLookupRecorder interface {
	RecordCacheLookup(hit bool)
}

// TeacherDetail is the public teacher page: the listing plus the open
// future slots a student can book.
type TeacherDetail struct {
	models.TeacherListing
	OpenSlots []models.AvailabilitySlot `json:"open_slots"`
}

// DirectoryService serves the public teacher directory with a short-lived
// Redis cache in front of the search query.
type DirectoryService struct {
	repo    directoryRepository
	slots   directorySlotLister
	cache   directoryCache
	metrics cacheLookupRecorder
	ttl     time.Duration
	logger  *zap.Logger
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(repo directoryRepository, slots directorySlotLister, cache directoryCache, metrics cacheLookupRecorder, ttl time.Duration, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DirectoryService{repo: repo, slots: slots, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// Search finds teachers by name, department or subject. An empty query
// lists every teacher. Results are cached per normalized query.
func (s *DirectoryService) Search(ctx context.Context, query string) ([]models.TeacherListing, error) {
	key := s.cacheKey(query)

	if s.cache != nil {
		var cached []models.TeacherListing
		switch err := s.cache.Get(ctx, key, &cached); {
		case err == nil:
			s.recordLookup(true)
			return cached, nil
		case errors.Is(err, appErrors.ErrCacheMiss):
			s.recordLookup(false)
		default:
			// A cache outage is not a miss.
			s.logger.Warn("directory cache read failed", zap.Error(err))
		}
	}

	listings, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search teachers")
	}
	if listings == nil {
		listings = []models.TeacherListing{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, listings, s.ttl); err != nil {
			s.logger.Warn("directory cache write failed", zap.Error(err))
		}
	}

	return listings, nil
}

// TeacherByID returns the public teacher page: the listing plus that
// teacher's open future slots.
func (s *DirectoryService) TeacherByID(ctx context.Context, id string) (*TeacherDetail, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	openSlots, err := s.slots.ListOpenForTeacher(ctx, listing.UserID)
	if err != nil {
		return nil, err
	}

	return &TeacherDetail{TeacherListing: *listing, OpenSlots: openSlots}, nil
}

func (s *DirectoryService) cacheKey(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return directoryCachePrefix + "all"
	}
	sum := sha1.Sum([]byte(normalized))
	return directoryCachePrefix + hex.EncodeToString(sum[:])
}

func (s *DirectoryService) recordLookup(hit bool) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordCacheLookup(hit)
}
