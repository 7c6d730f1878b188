package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	"github.com/jwalitptl/vet-admin-api/internal/service/audit"
	"github.com/jwalitptl/vet-admin-api/pkg/auth"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
	"github.com/jwalitptl/vet-admin-api/pkg/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
)

const tokenTypeBearer = "Bearer"

type Service struct {
	staffRepo repository.StaffRepository
	jwtSvc    auth.JWTService
	hasher    security.PasswordHasher
	auditor   *audit.AuditLogger
}

func NewService(staffRepo repository.StaffRepository, jwtSvc auth.JWTService,
	hasher security.PasswordHasher, auditor *audit.AuditLogger) *Service {
	return &Service{
		staffRepo: staffRepo,
		jwtSvc:    jwtSvc,
		hasher:    hasher,
		auditor:   auditor,
	}
}

// Login checks the staff member's credentials and issues a token pair.
// Unknown e-mail and wrong password give the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	staff, err := s.staffRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}

	if err := s.hasher.Compare(staff.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}
	if staff.Status == model.StaffStatusInactive {
		return nil, apperrors.Forbidden(ErrAccountInactive.Error())
	}

	pair, err := s.issue(staff)
	if err != nil {
		return nil, err
	}

	if s.auditor != nil {
		s.auditor.Log(ctx, staff.ID, model.AuditActionLogin, model.AuditEntityStaff, staff.ID, nil)
	}
	return &model.LoginResponse{TokenPair: *pair, Staff: staff}, nil
}

// Refresh exchanges a refresh token for a new pair. The staff member is
// reloaded so role changes and deactivation take effect.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	staff, err := s.staffRepo.Get(ctx, claims.StaffID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.Unauthorized(err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	if staff.Status == model.StaffStatusInactive {
		return nil, apperrors.Forbidden(ErrAccountInactive.Error())
	}
	return s.issue(staff)
}

// Me returns the authenticated staff member.
func (s *Service) Me(ctx context.Context, claims *model.TokenClaims) (*model.Staff, error) {
	staff, err := s.staffRepo.Get(ctx, claims.StaffID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.NotFound("staff member", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	return staff, nil
}

func (s *Service) issue(staff *model.Staff) (*model.TokenPair, error) {
	access, err := s.jwtSvc.GenerateAccessToken(staff)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(staff)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int64(s.jwtSvc.AccessTTL().Seconds()),
	}, nil
}
