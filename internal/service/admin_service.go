package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusdesk/booking-api/internal/models"
	appErrors "github.com/campusdesk/booking-api/pkg/errors"
	"github.com/campusdesk/booking-api/pkg/export"
)

type adminStudentRepository interface {
	List(ctx context.Context) ([]models.StudentListing, error)
	SetApproval(ctx context.Context, id string, approved bool) (int64, error)
}

type adminTeacherRepository interface {
	Search(ctx context.Context, query string) ([]models.TeacherListing, error)
}

type adminAppointmentRepository interface {
	ListAll(ctx context.Context) ([]models.AppointmentDetail, error)
}

// ExportFormat selects the rendering for admin exports.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered export bytes with serving metadata.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// AdminService provides the admin oversight operations: student approval,
// teacher management support and appointment exports.
type AdminService struct {
	students     adminStudentRepository
	teachers     adminTeacherRepository
	appointments adminAppointmentRepository
	audit        auditRecorder
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	logger       *zap.Logger
}

// NewAdminService constructs an AdminService.
func NewAdminService(students adminStudentRepository, teachers adminTeacherRepository, appointments adminAppointmentRepository, audit auditRecorder, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		students:     students,
		teachers:     teachers,
		appointments: appointments,
		audit:        audit,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
	}
}

// ListStudents returns every student account for the approval view.
func (s *AdminService) ListStudents(ctx context.Context) ([]models.StudentListing, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.StudentListing{}
	}
	return students, nil
}

// SetStudentApproval approves or revokes a student account.
func (s *AdminService) SetStudentApproval(ctx context.Context, actorID, profileID string, approved bool) error {
	rows, err := s.students.SetApproval(ctx, profileID, approved)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update approval")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	if s.audit != nil {
		s.audit.Record(&models.AuditLog{
			UserID:     &actorID,
			Action:     models.AuditActionStudentApproval,
			Resource:   "student_profile",
			ResourceID: &profileID,
			Details:    []byte(fmt.Sprintf(`{"approved":%t}`, approved)),
		})
	}
	return nil
}

// ListTeachers returns every teacher account.
func (s *AdminService) ListTeachers(ctx context.Context) ([]models.TeacherListing, error) {
	teachers, err := s.teachers.Search(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	if teachers == nil {
		teachers = []models.TeacherListing{}
	}
	return teachers, nil
}

// ListAppointments returns every appointment in the system, newest first.
func (s *AdminService) ListAppointments(ctx context.Context) ([]models.AppointmentDetail, error) {
	appointments, err := s.appointments.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	if appointments == nil {
		appointments = []models.AppointmentDetail{}
	}
	return appointments, nil
}

// ExportAppointments renders every appointment as CSV or PDF.
func (s *AdminService) ExportAppointments(ctx context.Context, format ExportFormat) (*ExportResult, error) {
	appointments, err := s.ListAppointments(ctx)
	if err != nil {
		return nil, err
	}

	dataset := appointmentsDataset(appointments)
	stamp := time.Now().UTC().Format("20060102-150405")

	switch ExportFormat(strings.ToLower(string(format))) {
	case ExportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("appointments-%s.csv", stamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case ExportFormatPDF:
		data, err := s.pdf.Render(dataset, "Appointments")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("appointments-%s.pdf", stamp),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
}

func appointmentsDataset(appointments []models.AppointmentDetail) export.Dataset {
	headers := []string{"Date", "Student", "Teacher", "Status", "Message", "Teacher Note"}
	rows := make([]map[string]string, 0, len(appointments))
	for _, a := range appointments {
		note := ""
		if a.TeacherNote != nil {
			note = *a.TeacherNote
		}
		rows = append(rows, map[string]string{
			"Date":         a.Date.Format("2006-01-02"),
			"Student":      a.StudentName,
			"Teacher":      a.TeacherName,
			"Status":       string(a.Status),
			"Message":      a.Message,
			"Teacher Note": note,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
