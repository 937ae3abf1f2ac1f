package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/booking-api/internal/models"
)

type approvalLookupStub struct {
	profile *models.StudentProfile
	err     error
}

func (s *approvalLookupStub) FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

func runApprovalMiddleware(t *testing.T, lookup StudentApprovalLookup, claims *models.JWTClaims) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/student/appointments", nil)
	require.NoError(t, err)
	c.Request = req
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}

	handler := ApprovedStudent(lookup)
	handler(c)
	if !c.IsAborted() {
		c.Status(http.StatusOK)
	}
	return w
}

func TestApprovedStudentPasses(t *testing.T) {
	lookup := &approvalLookupStub{profile: &models.StudentProfile{UserID: "student-1", IsApproved: true}}
	w := runApprovalMiddleware(t, lookup, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApprovedStudentBlocksUnapproved(t *testing.T) {
	lookup := &approvalLookupStub{profile: &models.StudentProfile{UserID: "student-1", IsApproved: false}}
	w := runApprovalMiddleware(t, lookup, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "PENDING_APPROVAL")
}

func TestApprovedStudentMissingProfile(t *testing.T) {
	lookup := &approvalLookupStub{err: sql.ErrNoRows}
	w := runApprovalMiddleware(t, lookup, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestApprovedStudentIgnoresOtherRoles(t *testing.T) {
	// Non-student principals pass straight through; the lookup never runs.
	w := runApprovalMiddleware(t, &approvalLookupStub{err: sql.ErrNoRows}, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApprovedStudentRequiresClaims(t *testing.T) {
	w := runApprovalMiddleware(t, &approvalLookupStub{}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
