package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tennisclub/league-system/models"
	"github.com/tennisclub/league-system/repositories"
)

// fakeMemberRepo хранит участников в памяти вместо Postgres; достаточно для auth-сценариев.
type fakeMemberRepo struct {
	byID    map[string]*models.Member
	byEmail map[string]*models.Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{
		byID:    make(map[string]*models.Member),
		byEmail: make(map[string]*models.Member),
	}
}

func (r *fakeMemberRepo) Create(_ context.Context, member *models.Member) error {
	if _, exists := r.byEmail[member.Email]; exists {
		return repositories.ErrMemberEmailConflict
	}
	stored := *member
	r.byID[member.ID] = &stored
	r.byEmail[member.Email] = &stored
	return nil
}

func (r *fakeMemberRepo) GetByID(_ context.Context, id string) (*models.Member, error) {
	member, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrMemberNotFound
	}
	copied := *member
	return &copied, nil
}

func (r *fakeMemberRepo) GetByEmail(_ context.Context, email string) (*models.Member, error) {
	member, ok := r.byEmail[email]
	if !ok {
		return nil, repositories.ErrMemberNotFound
	}
	copied := *member
	return &copied, nil
}

func (r *fakeMemberRepo) List(_ context.Context) ([]*models.Member, error) {
	members := make([]*models.Member, 0, len(r.byID))
	for _, member := range r.byID {
		copied := *member
		members = append(members, &copied)
	}
	return members, nil
}

func (r *fakeMemberRepo) ListByIDs(_ context.Context, ids []string) ([]*models.Member, error) {
	members := make([]*models.Member, 0, len(ids))
	for _, id := range ids {
		if member, ok := r.byID[id]; ok {
			copied := *member
			members = append(members, &copied)
		}
	}
	return members, nil
}

func (r *fakeMemberRepo) Update(_ context.Context, member *models.Member) error {
	if _, ok := r.byID[member.ID]; !ok {
		return repositories.ErrMemberNotFound
	}
	stored := *member
	r.byID[member.ID] = &stored
	r.byEmail[member.Email] = &stored
	return nil
}

func (r *fakeMemberRepo) UpdateRole(_ context.Context, id string, role models.MemberRole) error {
	member, ok := r.byID[id]
	if !ok {
		return repositories.ErrMemberNotFound
	}
	member.Role = role
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewAuthService(newFakeMemberRepo())
	ctx := context.Background()

	member, err := svc.Register(ctx, RegisterInput{
		FullName: "Anna Ivanova",
		Email:    "anna@example.com",
		Level:    models.LevelIntermediate,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, member.ID)
	assert.Equal(t, models.RoleMember, member.Role)
	assert.Empty(t, member.PasswordHash, "password hash must not leave the service")

	loggedIn, err := svc.Login(ctx, LoginInput{Email: "anna@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, member.ID, loggedIn.ID)
	assert.Empty(t, loggedIn.PasswordHash)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewAuthService(newFakeMemberRepo())

	_, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Anna Ivanova",
		Email:    "anna@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeMemberRepo())
	ctx := context.Background()

	input := RegisterInput{FullName: "Anna", Email: "anna@example.com", Password: "correct-horse"}
	_, err := svc.Register(ctx, input)
	require.NoError(t, err)

	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrAuthEmailTaken)
}

func TestRegisterAdminRoleOnlyForClubAddress(t *testing.T) {
	svc := NewAuthService(newFakeMemberRepo())
	ctx := context.Background()

	// Чужой адрес с запрошенной ролью admin понижается до member.
	member, err := svc.Register(ctx, RegisterInput{
		FullName: "Sly Fox",
		Email:    "fox@example.com",
		Role:     models.RoleAdmin,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, member.Role)

	admin, err := svc.Register(ctx, RegisterInput{
		FullName: "Club Admin",
		Email:    "admin@tennis.club",
		Role:     models.RoleAdmin,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := NewAuthService(newFakeMemberRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		FullName: "Anna",
		Email:    "anna@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "anna@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}
