// Package businessflow contains the core business logic and use cases for study administration
package businessflow

import (
	"context"
	"fmt"

	"github.com/emalab/pingflow/app/dto"
	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/repository"
	"github.com/emalab/pingflow/utils"
	"gorm.io/gorm"
)

// codeGenerationRetries bounds how many times a fresh signup code is drawn
// before giving up on an improbable run of collisions
const codeGenerationRetries = 5

// StudyFlow handles the study administration business logic
type StudyFlow interface {
	CreateStudy(ctx context.Context, req *dto.CreateStudyRequest, metadata *ClientMetadata) (*dto.CreateStudyResponse, error)
	GetStudy(ctx context.Context, req *dto.GetStudyRequest) (*dto.GetStudyResponse, error)
	UpdateStudy(ctx context.Context, req *dto.UpdateStudyRequest, metadata *ClientMetadata) (*dto.UpdateStudyResponse, error)
	DeleteStudy(ctx context.Context, accountID, studyID uint, metadata *ClientMetadata) (*dto.DeleteStudyResponse, error)
	ListStudies(ctx context.Context, accountID uint) (*dto.ListStudiesResponse, error)
	AddMember(ctx context.Context, req *dto.AddStudyMemberRequest, metadata *ClientMetadata) (*dto.AddStudyMemberResponse, error)
	ListMembers(ctx context.Context, accountID, studyID uint) (*dto.ListStudyMembersResponse, error)
	UpdateMemberRole(ctx context.Context, req *dto.UpdateStudyMemberRoleRequest, metadata *ClientMetadata) (*dto.UpdateStudyMemberRoleResponse, error)
	RemoveMember(ctx context.Context, req *dto.RemoveStudyMemberRequest, metadata *ClientMetadata) (*dto.RemoveStudyMemberResponse, error)
}

// StudyFlowImpl implements the study business flow
type StudyFlowImpl struct {
	studyRepo   repository.StudyRepository
	memberRepo  repository.StudyMemberRepository
	accountRepo repository.AccountRepository
	db          *gorm.DB
}

// NewStudyFlow creates a new study flow instance
func NewStudyFlow(
	studyRepo repository.StudyRepository,
	memberRepo repository.StudyMemberRepository,
	accountRepo repository.AccountRepository,
	db *gorm.DB,
) StudyFlow {
	return &StudyFlowImpl{
		studyRepo:   studyRepo,
		memberRepo:  memberRepo,
		accountRepo: accountRepo,
		db:          db,
	}
}

// CreateStudy creates a study and grants the creator the owner role
func (s *StudyFlowImpl) CreateStudy(ctx context.Context, req *dto.CreateStudyRequest, metadata *ClientMetadata) (*dto.CreateStudyResponse, error) {
	code, err := s.generateSignupCode(ctx)
	if err != nil {
		return nil, NewBusinessError("STUDY_CODE_GENERATION_FAILED", "Failed to generate a signup code", err)
	}

	study := &models.Study{
		PublicName:     req.PublicName,
		InternalName:   req.InternalName,
		Code:           code,
		ContactMessage: req.ContactMessage,
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.studyRepo.Save(txCtx, study); err != nil {
			return err
		}

		membership := &models.StudyMember{
			AccountID: req.AccountID,
			StudyID:   study.ID,
			Role:      models.RoleOwner,
		}
		return s.memberRepo.Save(txCtx, membership)
	})
	if err != nil {
		return nil, NewBusinessError("STUDY_CREATION_FAILED", "Study creation failed", err)
	}

	return &dto.CreateStudyResponse{
		Message: "Study created successfully",
		Study:   toStudyDTO(*study, models.RoleOwner),
	}, nil
}

// GetStudy retrieves a study the caller is a member of
func (s *StudyFlowImpl) GetStudy(ctx context.Context, req *dto.GetStudyRequest) (*dto.GetStudyResponse, error) {
	study, role, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, req.AccountID, req.StudyID, models.RoleViewer)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	return &dto.GetStudyResponse{Study: toStudyDTO(study, role)}, nil
}

// UpdateStudy updates a study's names and contact message
func (s *StudyFlowImpl) UpdateStudy(ctx context.Context, req *dto.UpdateStudyRequest, metadata *ClientMetadata) (*dto.UpdateStudyResponse, error) {
	study, role, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, req.AccountID, req.StudyID, models.RoleEditor)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	if req.PublicName != nil {
		study.PublicName = *req.PublicName
	}
	if req.InternalName != nil {
		study.InternalName = *req.InternalName
	}
	if req.ContactMessage != nil {
		study.ContactMessage = req.ContactMessage
	}

	if err := s.studyRepo.Update(ctx, study); err != nil {
		return nil, NewBusinessError("STUDY_UPDATE_FAILED", "Study update failed", err)
	}

	return &dto.UpdateStudyResponse{
		Message: "Study updated successfully",
		Study:   toStudyDTO(study, role),
	}, nil
}

// DeleteStudy soft-deletes a study. Child rows stay in place; every delivery
// and sweep query joins on live studies, so the study's pings stop moving the
// moment the row is marked deleted.
func (s *StudyFlowImpl) DeleteStudy(ctx context.Context, accountID, studyID uint, metadata *ClientMetadata) (*dto.DeleteStudyResponse, error) {
	_, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, accountID, studyID, models.RoleOwner)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	if err := s.studyRepo.SoftDelete(ctx, studyID); err != nil {
		return nil, NewBusinessError("STUDY_DELETION_FAILED", "Study deletion failed", err)
	}

	return &dto.DeleteStudyResponse{Message: "Study deleted successfully"}, nil
}

// ListStudies retrieves every study the account is a member of, with the
// caller's role on each
func (s *StudyFlowImpl) ListStudies(ctx context.Context, accountID uint) (*dto.ListStudiesResponse, error) {
	studies, err := s.studyRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError("STUDY_LIST_FAILED", "Failed to list studies", err)
	}

	memberships, err := s.memberRepo.ByFilter(ctx, models.StudyMemberFilter{AccountID: &accountID}, "", 0, 0)
	if err != nil {
		return nil, NewBusinessError("STUDY_LIST_FAILED", "Failed to list studies", err)
	}

	roleByStudy := make(map[uint]models.StudyRole, len(memberships))
	for _, m := range memberships {
		roleByStudy[m.StudyID] = m.Role
	}

	items := make([]dto.StudyDTO, 0, len(studies))
	for _, study := range studies {
		items = append(items, toStudyDTO(*study, roleByStudy[study.ID]))
	}

	return &dto.ListStudiesResponse{
		Message: "Studies retrieved successfully",
		Items:   items,
	}, nil
}

// AddMember grants an existing account a role on the study
func (s *StudyFlowImpl) AddMember(ctx context.Context, req *dto.AddStudyMemberRequest, metadata *ClientMetadata) (*dto.AddStudyMemberResponse, error) {
	_, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, req.AccountID, req.StudyID, models.RoleOwner)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	role := models.StudyRole(req.Role)
	if !role.Valid() || role == models.RoleDeveloper {
		return nil, NewBusinessError("INVALID_ROLE", "Invalid role", fmt.Errorf("role %q is not assignable", req.Role))
	}

	account, err := s.accountRepo.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to lookup account", err)
	}
	if account == nil {
		return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "No account with that email", ErrAccountNotFound)
	}

	existing, err := s.memberRepo.ByAccountAndStudy(ctx, account.ID, req.StudyID)
	if err != nil {
		return nil, NewBusinessError("MEMBER_LOOKUP_FAILED", "Failed to lookup membership", err)
	}
	if existing != nil {
		return nil, NewBusinessError("MEMBER_ALREADY_EXISTS", "Account is already a member of this study", ErrMemberAlreadyExists)
	}

	membership := &models.StudyMember{
		AccountID: account.ID,
		StudyID:   req.StudyID,
		Role:      role,
	}
	if err := s.memberRepo.Save(ctx, membership); err != nil {
		return nil, NewBusinessError("MEMBER_CREATION_FAILED", "Failed to add member", err)
	}

	return &dto.AddStudyMemberResponse{
		Message: "Member added successfully",
		Member: dto.StudyMemberDTO{
			AccountID: account.ID,
			Email:     account.Email,
			FullName:  account.FullName(),
			Role:      role.String(),
			CreatedAt: membership.CreatedAt,
		},
	}, nil
}

// ListMembers retrieves the members of a study
func (s *StudyFlowImpl) ListMembers(ctx context.Context, accountID, studyID uint) (*dto.ListStudyMembersResponse, error) {
	_, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, accountID, studyID, models.RoleOwner)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	members, err := s.memberRepo.ListByStudy(ctx, studyID)
	if err != nil {
		return nil, NewBusinessError("MEMBER_LIST_FAILED", "Failed to list members", err)
	}

	items := make([]dto.StudyMemberDTO, 0, len(members))
	for _, m := range members {
		item := dto.StudyMemberDTO{
			AccountID: m.AccountID,
			Role:      m.Role.String(),
			CreatedAt: m.CreatedAt,
		}
		if m.Account != nil {
			item.Email = m.Account.Email
			item.FullName = m.Account.FullName()
		}
		items = append(items, item)
	}

	return &dto.ListStudyMembersResponse{
		Message: "Members retrieved successfully",
		Items:   items,
	}, nil
}

// UpdateMemberRole changes a member's role on the study. An owner cannot
// change their own role; ownership moves by another owner reassigning it.
func (s *StudyFlowImpl) UpdateMemberRole(ctx context.Context, req *dto.UpdateStudyMemberRoleRequest, metadata *ClientMetadata) (*dto.UpdateStudyMemberRoleResponse, error) {
	_, callerRole, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, req.AccountID, req.StudyID, models.RoleOwner)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	role := models.StudyRole(req.Role)
	if !role.Valid() || role == models.RoleDeveloper {
		return nil, NewBusinessError("INVALID_ROLE", "Invalid role", fmt.Errorf("role %q is not assignable", req.Role))
	}

	if req.MemberAccountID == req.AccountID && callerRole == models.RoleOwner {
		return nil, NewBusinessError("OWNER_ROLE_CHANGE_FORBIDDEN", "Owners cannot change their own role", ErrOwnerRoleChangeForbidden)
	}

	member, err := s.memberRepo.ByAccountAndStudy(ctx, req.MemberAccountID, req.StudyID)
	if err != nil {
		return nil, NewBusinessError("MEMBER_LOOKUP_FAILED", "Failed to lookup membership", err)
	}
	if member == nil {
		return nil, NewBusinessError("MEMBER_NOT_FOUND", "Account is not a member of this study", ErrMemberNotFound)
	}

	if err := s.memberRepo.UpdateRole(ctx, member.ID, role); err != nil {
		return nil, NewBusinessError("MEMBER_UPDATE_FAILED", "Failed to update member role", err)
	}

	return &dto.UpdateStudyMemberRoleResponse{
		Message: "Member role updated successfully",
		Role:    role.String(),
	}, nil
}

// RemoveMember removes a member from the study. The same self-guard as role
// changes applies: an owner cannot remove themselves.
func (s *StudyFlowImpl) RemoveMember(ctx context.Context, req *dto.RemoveStudyMemberRequest, metadata *ClientMetadata) (*dto.RemoveStudyMemberResponse, error) {
	_, callerRole, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, req.AccountID, req.StudyID, models.RoleOwner)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	if req.MemberAccountID == req.AccountID && callerRole == models.RoleOwner {
		return nil, NewBusinessError("OWNER_ROLE_CHANGE_FORBIDDEN", "Owners cannot remove themselves", ErrOwnerRoleChangeForbidden)
	}

	member, err := s.memberRepo.ByAccountAndStudy(ctx, req.MemberAccountID, req.StudyID)
	if err != nil {
		return nil, NewBusinessError("MEMBER_LOOKUP_FAILED", "Failed to lookup membership", err)
	}
	if member == nil {
		return nil, NewBusinessError("MEMBER_NOT_FOUND", "Account is not a member of this study", ErrMemberNotFound)
	}

	if err := s.memberRepo.Remove(ctx, member.ID); err != nil {
		return nil, NewBusinessError("MEMBER_REMOVAL_FAILED", "Failed to remove member", err)
	}

	return &dto.RemoveStudyMemberResponse{Message: "Member removed successfully"}, nil
}

// generateSignupCode draws study signup codes until one is free
func (s *StudyFlowImpl) generateSignupCode(ctx context.Context) (string, error) {
	for i := 0; i < codeGenerationRetries; i++ {
		code, err := utils.GenerateNonConfusableCode(utils.StudySignupCodeLength)
		if err != nil {
			return "", err
		}

		existing, err := s.studyRepo.ByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return code, nil
		}
	}

	return "", fmt.Errorf("exhausted %d attempts to find a free signup code", codeGenerationRetries)
}

// toStudyDTO converts a study model to its response shape
func toStudyDTO(study models.Study, role models.StudyRole) dto.StudyDTO {
	return dto.StudyDTO{
		ID:             study.ID,
		PublicName:     study.PublicName,
		InternalName:   study.InternalName,
		Code:           study.Code,
		ContactMessage: study.ContactMessage,
		Role:           role.String(),
		CreatedAt:      study.CreatedAt,
		UpdatedAt:      utils.ToPtr(study.UpdatedAt),
	}
}
