package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tennisclub/league-system/models"
	"github.com/tennisclub/league-system/repositories"
	"golang.org/x/crypto/bcrypt"
)

// adminEmail задаёт единственный адрес, которому разрешено запросить
// роль администратора при регистрации.
const adminEmail = "admin@tennis.club"

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.Member, error)
	Login(ctx context.Context, input LoginInput) (*models.Member, error)
}

type RegisterInput struct {
	FullName string             `json:"full_name"`
	Email    string             `json:"email"`
	Level    models.MemberLevel `json:"level"`
	Role     models.MemberRole  `json:"role"`
	Password string             `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	memberRepo repositories.MemberRepository
}

func NewAuthService(memberRepo repositories.MemberRepository) AuthService {
	return &authService{memberRepo: memberRepo}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.Member, error) {
	if len(input.Password) < 8 {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member := &models.Member{
		ID:           uuid.NewString(),
		FullName:     input.FullName,
		Email:        input.Email,
		Level:        input.Level,
		Role:         resolveRole(input.Email, input.Role),
		PasswordHash: string(hashedPassword),
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		if errors.Is(err, repositories.ErrMemberEmailConflict) {
			return nil, ErrAuthEmailTaken
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	member.PasswordHash = ""
	return member, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Member, error) {
	member, err := s.memberRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find member by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	member.PasswordHash = ""
	return member, nil
}

// resolveRole отдаёт admin только фиксированному адресу клуба;
// остальные регистрации всегда получают роль member.
func resolveRole(email string, requested models.MemberRole) models.MemberRole {
	if email == adminEmail && requested == models.RoleAdmin {
		return models.RoleAdmin
	}
	return models.RoleMember
}
