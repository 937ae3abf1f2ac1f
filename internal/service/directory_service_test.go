package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/booking-api/internal/models"
	appErrors "github.com/campusdesk/booking-api/pkg/errors"
)

type mockDirectoryRepo struct {
	listings   []models.TeacherListing
	byID       *models.TeacherListing
	searchRuns int
}

func (m *mockDirectoryRepo) Search(ctx context.Context, query string) ([]models.TeacherListing, error) {
	m.searchRuns++
	return m.listings, nil
}

func (m *mockDirectoryRepo) FindByID(ctx context.Context, id string) (*models.TeacherListing, error) {
	if m.byID == nil {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

type mockDirectoryCache struct {
	store map[string][]byte
}

func (m *mockDirectoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockDirectoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.store == nil {
		m.store = make(map[string][]byte)
	}
	m.store[key] = raw
	return nil
}

type mockSlotLister struct {
	slots []models.AvailabilitySlot
}

func (m *mockSlotLister) ListOpenForTeacher(ctx context.Context, teacherID string) ([]models.AvailabilitySlot, error) {
	return m.slots, nil
}

type mockLookupRecorder struct {
	hits, misses int
}

func (m *mockLookupRecorder) RecordCacheLookup(hit bool) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func sampleListing() models.TeacherListing {
	return models.TeacherListing{
		TeacherProfile: models.TeacherProfile{ID: "prof-1", UserID: "teacher-1", Department: "Mathematics", Subject: "Calculus"},
		FullName:       "Lee Teacher",
		Email:          "lee@example.com",
	}
}

func TestDirectoryServiceSearchCaches(t *testing.T) {
	repo := &mockDirectoryRepo{listings: []models.TeacherListing{sampleListing()}}
	cache := &mockDirectoryCache{}
	metrics := &mockLookupRecorder{}
	svc := NewDirectoryService(repo, &mockSlotLister{}, cache, metrics, time.Minute, nil)

	first, err := svc.Search(context.Background(), "math")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, repo.searchRuns)
	assert.Equal(t, 1, metrics.misses)

	second, err := svc.Search(context.Background(), "  Math ")
	require.NoError(t, err)
	require.Len(t, second, 1)
	// Normalized query hits the cache; the repository is not queried again.
	assert.Equal(t, 1, repo.searchRuns)
	assert.Equal(t, 1, metrics.hits)
}

type brokenDirectoryCache struct{}

func (brokenDirectoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("dial tcp 127.0.0.1:6379: connection refused")
}

func (brokenDirectoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("dial tcp 127.0.0.1:6379: connection refused")
}

func TestDirectoryServiceSearchCacheOutage(t *testing.T) {
	repo := &mockDirectoryRepo{listings: []models.TeacherListing{sampleListing()}}
	metrics := &mockLookupRecorder{}
	svc := NewDirectoryService(repo, &mockSlotLister{}, brokenDirectoryCache{}, metrics, time.Minute, nil)

	listings, err := svc.Search(context.Background(), "math")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, 1, repo.searchRuns)
	// An unreachable cache is neither a hit nor a miss.
	assert.Zero(t, metrics.hits)
	assert.Zero(t, metrics.misses)
}

func TestDirectoryServiceSearchEmptyQueryListsAll(t *testing.T) {
	repo := &mockDirectoryRepo{listings: []models.TeacherListing{sampleListing()}}
	svc := NewDirectoryService(repo, &mockSlotLister{}, nil, nil, time.Minute, nil)

	listings, err := svc.Search(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, listings, 1)
}

func TestDirectoryServiceTeacherByID(t *testing.T) {
	listing := sampleListing()
	slots := []models.AvailabilitySlot{{ID: "slot-1", TeacherID: "teacher-1", StartTime: "10:00", EndTime: "10:30"}}
	svc := NewDirectoryService(&mockDirectoryRepo{byID: &listing}, &mockSlotLister{slots: slots}, nil, nil, time.Minute, nil)

	detail, err := svc.TeacherByID(context.Background(), "prof-1")
	require.NoError(t, err)
	assert.Equal(t, "Lee Teacher", detail.FullName)
	require.Len(t, detail.OpenSlots, 1)
}

func TestDirectoryServiceTeacherByIDNotFound(t *testing.T) {
	svc := NewDirectoryService(&mockDirectoryRepo{}, &mockSlotLister{}, nil, nil, time.Minute, nil)

	_, err := svc.TeacherByID(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
