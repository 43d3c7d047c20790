package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/gymnica/clubapi/internal/database"
	"github.com/gymnica/clubapi/internal/models"
	"github.com/google/uuid"
)

type MemberRepository struct {
	db *database.DB
}

func NewMemberRepository(db *database.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanMemberRow handles nullable fields and populates a Member from a
// database row.
func scanMemberRow(scanner rowScanner) (*models.Member, error) {
	var member models.Member
	var passwordHash *string

	err := scanner.Scan(
		&member.ID, &member.Name, &member.Email, &passwordHash,
		&member.Phone, &member.AttachmentRef, &member.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if passwordHash != nil {
		member.PasswordHash = *passwordHash
	}

	return &member, nil
}

const memberColumns = `id, display_name, email, credential_hash, phone, attachment_ref, created_at`

func (r *MemberRepository) GetByID(ctx context.Context, id string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	return scanMemberRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *MemberRepository) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE email = $1`

	return scanMemberRow(r.db.Pool.QueryRow(ctx, query, email))
}

func (r *MemberRepository) List(ctx context.Context) ([]*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	members := make([]*models.Member, 0)
	for rows.Next() {
		member, err := scanMemberRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return members, nil
}

// Create inserts a new member. PasswordHash may be empty for
// roster-only members created through the admin console; those rows
// can never authenticate.
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	member.ID = uuid.New().String()
	member.CreatedAt = time.Now()

	query := `
		INSERT INTO members (id, display_name, email, credential_hash, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + memberColumns

	return scanMemberRow(r.db.Pool.QueryRow(ctx, query,
		member.ID, member.Name, member.Email, member.PasswordHash, member.Phone, member.CreatedAt,
	))
}

// CreateTx is Create running on the caller's transaction, used by the
// single-row roster save so the implicit member creation commits with
// the row it backs.
func (r *MemberRepository) CreateTx(ctx context.Context, q Querier, member *models.Member) (*models.Member, error) {
	member.ID = uuid.New().String()
	member.CreatedAt = time.Now()

	query := `
		INSERT INTO members (id, display_name, email, credential_hash, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + memberColumns

	return scanMemberRow(q.QueryRow(ctx, query,
		member.ID, member.Name, member.Email, member.PasswordHash, member.Phone, member.CreatedAt,
	))
}

// GetByEmailTx looks a member up on the caller's transaction.
func (r *MemberRepository) GetByEmailTx(ctx context.Context, q Querier, email string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE email = $1`

	return scanMemberRow(q.QueryRow(ctx, query, email))
}

// UpdateAttachmentRef stores the generated file name for a member's
// training plan.
func (r *MemberRepository) UpdateAttachmentRef(ctx context.Context, id, ref string) error {
	query := `UPDATE members SET attachment_ref = $1 WHERE id = $2`

	result, err := r.db.Pool.Exec(ctx, query, ref, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
