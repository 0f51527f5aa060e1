package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/tennisclub/league-system/models"
	"github.com/tennisclub/league-system/repositories"
)

type MemberService interface {
	GetByID(ctx context.Context, id string) (*models.Member, error)
	List(ctx context.Context) ([]*models.Member, error)
	UpdateRole(ctx context.Context, id string, role models.MemberRole) (*models.Member, error)
}

type memberService struct {
	memberRepo repositories.MemberRepository
}

func NewMemberService(memberRepo repositories.MemberRepository) MemberService {
	return &memberService{memberRepo: memberRepo}
}

func (s *memberService) GetByID(ctx context.Context, id string) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member %s: %w", id, err)
	}
	member.PasswordHash = ""
	return member, nil
}

func (s *memberService) List(ctx context.Context) ([]*models.Member, error) {
	members, err := s.memberRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	for _, member := range members {
		member.PasswordHash = ""
	}
	return members, nil
}

func (s *memberService) UpdateRole(ctx context.Context, id string, role models.MemberRole) (*models.Member, error) {
	switch role {
	case models.RoleMember, models.RoleAdmin:
	default:
		return nil, ErrInvalidMemberRole
	}

	if err := s.memberRepo.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to update role for member %s: %w", id, err)
	}

	return s.GetByID(ctx, id)
}
