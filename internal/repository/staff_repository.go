package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// ErrDuplicateStaff is returned when the email is already registered.
var ErrDuplicateStaff = errors.New("staff email already registered")

const uniqueViolation = "23505"

// StaffRepository stores the staff accounts that sign in to record
// resolutions and curate articles.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffMember) error
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
	GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error)
}

type staffRepository struct {
	pool *pgxpool.Pool
}

func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

const staffColumns = `id, name, email, password_hash, role, team, active_flag, created_at, updated_at`

// Create lowercases the email before insert; emails are unique
// case-insensitively.
func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	staff.Email = strings.ToLower(strings.TrimSpace(staff.Email))
	if !staff.Role.Valid() {
		return fmt.Errorf("unknown staff role %q", staff.Role)
	}

	err := r.pool.QueryRow(ctx, `
        INSERT INTO staff_members (name, email, password_hash, role, team, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`,
		staff.Name, staff.Email, staff.PasswordHash, staff.Role, staff.Team, staff.Active,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateStaff, staff.Email)
	}
	return err
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	return r.fetchOne(ctx, `SELECT `+staffColumns+` FROM staff_members WHERE id=$1`, id)
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	return r.fetchOne(ctx, `SELECT `+staffColumns+` FROM staff_members WHERE email=$1`,
		strings.ToLower(strings.TrimSpace(email)))
}

func (r *staffRepository) fetchOne(ctx context.Context, query string, arg any) (*domain.StaffMember, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	staff, err := pgx.CollectExactlyOneRow(rows, scanStaff)
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func scanStaff(row pgx.CollectableRow) (domain.StaffMember, error) {
	var s domain.StaffMember
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.Role, &s.Team, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
