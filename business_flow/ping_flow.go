// Package businessflow contains the core business logic and use cases for ping inspection workflows
package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/emalab/pingflow/app/dto"
	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/repository"
)

// PingFlow handles the researcher-facing view of materialized pings
type PingFlow interface {
	ListPings(ctx context.Context, req *dto.ListPingsRequest) (*dto.ListPingsResponse, error)
	DeletePing(ctx context.Context, accountID, studyID, pingID uint, metadata *ClientMetadata) (*dto.DeletePingResponse, error)
	ExportPings(ctx context.Context, req *dto.ExportPingsRequest) (string, []byte, error)
}

// PingFlowImpl implements the ping inspection business flow
type PingFlowImpl struct {
	studyRepo  repository.StudyRepository
	memberRepo repository.StudyMemberRepository
	pingRepo   repository.PingRepository
	db         *gorm.DB
}

// NewPingFlow creates a new ping flow instance
func NewPingFlow(
	studyRepo repository.StudyRepository,
	memberRepo repository.StudyMemberRepository,
	pingRepo repository.PingRepository,
	db *gorm.DB,
) PingFlow {
	return &PingFlowImpl{
		studyRepo:  studyRepo,
		memberRepo: memberRepo,
		pingRepo:   pingRepo,
		db:         db,
	}
}

// ListPings retrieves a page of a study's pings, newest scheduled first
func (s *PingFlowImpl) ListPings(ctx context.Context, req *dto.ListPingsRequest) (*dto.ListPingsResponse, error) {
	_, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, req.AccountID, req.StudyID, models.RoleViewer)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	page := max(1, req.Page)
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	filter := models.PingFilter{
		StudyID:        &req.StudyID,
		EnrollmentID:   req.EnrollmentID,
		PingTemplateID: req.PingTemplateID,
		PingSent:       req.PingSent,
	}

	total, err := s.pingRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("PING_LIST_FAILED", "Failed to list pings", err)
	}

	pings, err := s.pingRepo.ByFilter(ctx, filter, "scheduled_ts DESC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("PING_LIST_FAILED", "Failed to list pings", err)
	}

	items := make([]dto.PingDTO, 0, len(pings))
	for _, ping := range pings {
		items = append(items, toPingDTO(ping))
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &dto.ListPingsResponse{
		Message: "Pings retrieved successfully",
		Items:   items,
		Pagination: dto.PaginationInfo{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	}, nil
}

// DeletePing soft-deletes one ping so it never dispatches
func (s *PingFlowImpl) DeletePing(ctx context.Context, accountID, studyID, pingID uint, metadata *ClientMetadata) (*dto.DeletePingResponse, error) {
	_, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, accountID, studyID, models.RoleEditor)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	ping, err := getPing(ctx, s.pingRepo, pingID)
	if err != nil {
		return nil, NewBusinessError("PING_LOOKUP_FAILED", "Failed to lookup ping", err)
	}
	if ping.StudyID != studyID {
		return nil, NewBusinessError("PING_LOOKUP_FAILED", "Failed to lookup ping", ErrPingNotFound)
	}

	if err := s.pingRepo.SoftDelete(ctx, pingID); err != nil {
		return nil, NewBusinessError("PING_DELETION_FAILED", "Ping deletion failed", err)
	}

	return &dto.DeletePingResponse{Message: "Ping deleted successfully"}, nil
}

// ExportPings writes every ping of the study into a one-sheet workbook and
// returns the filename with the file bytes
func (s *PingFlowImpl) ExportPings(ctx context.Context, req *dto.ExportPingsRequest) (string, []byte, error) {
	study, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, req.AccountID, req.StudyID, models.RoleViewer)
	if err != nil {
		return "", nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	pings, err := s.pingRepo.ListByStudy(ctx, req.StudyID, 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("PING_EXPORT_FAILED", "Failed to fetch pings", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := sanitizeSheetName(study.InternalName)
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{
		"id", "ping_template_id", "ping_template_name", "enrollment_id",
		"study_pid", "day_num", "scheduled_ts", "reminder_ts", "expire_ts",
		"ping_sent", "sent_ts", "reminder_sent", "reminder_sent_ts",
		"first_clicked_ts", "last_clicked_ts", "url", "created_at",
	}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, ping := range pings {
		templateName := ""
		if ping.PingTemplate != nil {
			templateName = ping.PingTemplate.Name
		}
		studyPID := ""
		if ping.Enrollment != nil {
			studyPID = ping.Enrollment.StudyPID
		}
		url := ""
		if ping.URL != nil {
			url = *ping.URL
		}

		record := []string{
			strconv.FormatUint(uint64(ping.ID), 10),
			strconv.FormatUint(uint64(ping.PingTemplateID), 10),
			templateName,
			strconv.FormatUint(uint64(ping.EnrollmentID), 10),
			studyPID,
			strconv.Itoa(ping.DayNum),
			ping.ScheduledTs.UTC().Format(time.RFC3339),
			exportTs(ping.ReminderTs),
			exportTs(ping.ExpireTs),
			strconv.FormatBool(ping.PingSent),
			exportTs(ping.SentTs),
			strconv.FormatBool(ping.ReminderSent),
			exportTs(ping.ReminderSentTs),
			exportTs(ping.FirstClickedTs),
			exportTs(ping.LastClickedTs),
			url,
			ping.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("PING_EXPORT_FAILED", "Failed to write workbook", err)
	}

	filename := fmt.Sprintf("pings_study_%d.xlsx", req.StudyID)
	return filename, buf.Bytes(), nil
}

// toPingDTO converts a ping model to its researcher-facing response shape
func toPingDTO(ping *models.Ping) dto.PingDTO {
	item := dto.PingDTO{
		ID:             ping.ID,
		StudyID:        ping.StudyID,
		PingTemplateID: ping.PingTemplateID,
		EnrollmentID:   ping.EnrollmentID,
		DayNum:         ping.DayNum,
		ScheduledTs:    ping.ScheduledTs,
		ReminderTs:     ping.ReminderTs,
		ExpireTs:       ping.ExpireTs,
		PingSent:       ping.PingSent,
		SentTs:         ping.SentTs,
		ReminderSent:   ping.ReminderSent,
		ReminderSentTs: ping.ReminderSentTs,
		FirstClickedTs: ping.FirstClickedTs,
		LastClickedTs:  ping.LastClickedTs,
		URL:            ping.URL,
		CreatedAt:      ping.CreatedAt,
	}
	if ping.PingTemplate != nil {
		item.PingTemplateName = ping.PingTemplate.Name
	}
	if ping.Enrollment != nil {
		item.StudyPID = ping.Enrollment.StudyPID
	}
	return item
}

// exportTs renders an optional timestamp for a spreadsheet cell
func exportTs(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

// sanitizeSheetName strips the characters Excel forbids in sheet names and
// keeps the result inside the 31-char cap
func sanitizeSheetName(name string) string {
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	safe := strings.TrimSpace(replacer.Replace(name))
	if safe == "" {
		return "pings"
	}
	if len(safe) > 31 {
		return safe[:31]
	}
	return safe
}
