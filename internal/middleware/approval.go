package middleware

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/booking-api/internal/models"
	appErrors "github.com/campusdesk/booking-api/pkg/errors"
	"github.com/campusdesk/booking-api/pkg/response"
)

// StudentApprovalLookup resolves the approval flag for a student user.
type StudentApprovalLookup interface {
	FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error)
}

// ApprovedStudent gates booking routes behind admin approval. Students
// created through self-service registration start unapproved and cannot
// book until an admin flips the flag.
func ApprovedStudent(students StudentApprovalLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if claims.Role != models.RoleStudent {
			c.Next()
			return
		}

		profile, err := students.FindByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "student profile not found"))
			} else {
				response.Error(c, appErrors.Clone(appErrors.ErrInternal, "failed to load student profile"))
			}
			c.Abort()
			return
		}

		if !profile.IsApproved {
			response.Error(c, appErrors.Clone(appErrors.ErrPendingApproval, "account is awaiting admin approval"))
			c.Abort()
			return
		}

		c.Next()
	}
}
