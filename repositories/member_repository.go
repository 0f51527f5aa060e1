package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/tennisclub/league-system/models"
)

var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberEmailConflict = errors.New("member email is already in use")
)

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id string) (*models.Member, error)
	GetByEmail(ctx context.Context, email string) (*models.Member, error)
	List(ctx context.Context) ([]*models.Member, error)
	ListByIDs(ctx context.Context, ids []string) ([]*models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	UpdateRole(ctx context.Context, id string, role models.MemberRole) error
}

type postgresMemberRepository struct {
	db *sql.DB
}

func NewPostgresMemberRepository(db *sql.DB) MemberRepository {
	return &postgresMemberRepository{db: db}
}

const memberColumns = `id, full_name, email, level, role, password_hash, joined_at`

func (r *postgresMemberRepository) Create(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO members (id, full_name, email, level, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING joined_at`

	err := r.db.QueryRowContext(ctx, query,
		member.ID,
		member.FullName,
		member.Email,
		member.Level,
		member.Role,
		member.PasswordHash,
	).Scan(&member.JoinedAt)

	return r.handleMemberError(err)
}

func (r *postgresMemberRepository) GetByID(ctx context.Context, id string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return r.scanMember(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMemberRepository) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE email = $1`
	return r.scanMember(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresMemberRepository) List(ctx context.Context) ([]*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	return r.collectMembers(rows)
}

func (r *postgresMemberRepository) ListByIDs(ctx context.Context, ids []string) ([]*models.Member, error) {
	if len(ids) == 0 {
		return []*models.Member{}, nil
	}

	query := `SELECT ` + memberColumns + ` FROM members WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query members by ids: %w", err)
	}
	defer rows.Close()

	return r.collectMembers(rows)
}

func (r *postgresMemberRepository) Update(ctx context.Context, member *models.Member) error {
	query := `UPDATE members SET full_name = $1, level = $2, role = $3 WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, member.FullName, member.Level, member.Role, member.ID)
	if err != nil {
		return r.handleMemberError(err)
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresMemberRepository) UpdateRole(ctx context.Context, id string, role models.MemberRole) error {
	query := `UPDATE members SET role = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, role, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresMemberRepository) scanMember(row *sql.Row) (*models.Member, error) {
	member := &models.Member{}
	err := row.Scan(
		&member.ID,
		&member.FullName,
		&member.Email,
		&member.Level,
		&member.Role,
		&member.PasswordHash,
		&member.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to scan member: %w", err)
	}
	return member, nil
}

func (r *postgresMemberRepository) collectMembers(rows *sql.Rows) ([]*models.Member, error) {
	members := make([]*models.Member, 0)
	for rows.Next() {
		var member models.Member
		if err := rows.Scan(
			&member.ID,
			&member.FullName,
			&member.Email,
			&member.Level,
			&member.Role,
			&member.PasswordHash,
			&member.JoinedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, &member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during member rows iteration: %w", err)
	}
	return members, nil
}

func (r *postgresMemberRepository) handleMemberError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Constraint == "members_email_key" {
			return ErrMemberEmailConflict
		}
	}
	return err
}
