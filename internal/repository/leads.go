package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/rolloff-rates/internal/dto"
	"github.com/octobees/rolloff-rates/internal/entity"
)

// ErrLeadNotFound is returned when no lead matches the identifier.
var ErrLeadNotFound = errors.New("lead not found")

// LeadsRepository persists quote requests.
type LeadsRepository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	List(ctx context.Context, filter dto.LeadListFilter) ([]entity.Lead, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error)
}

// PGXLeadsRepository implements LeadsRepository with pgx.
type PGXLeadsRepository struct {
	pool pgxPool
}

// NewPGXLeadsRepository wires a pgx backed lead repository.
func NewPGXLeadsRepository(pool *pgxpool.Pool) *PGXLeadsRepository {
	return &PGXLeadsRepository{pool: pool}
}

const leadColumns = `id, name, email, phone, COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(size, ''), COALESCE(message, ''), created_at`

// Create inserts the lead and fills in its id and creation time.
func (r *PGXLeadsRepository) Create(ctx context.Context, lead *entity.Lead) error {
	if lead == nil {
		return fmt.Errorf("lead payload is nil")
	}
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO leads (id, name, email, phone, address, city, state, size, message)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at
    `,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		stringOrNil(lead.Address),
		stringOrNil(lead.City),
		stringOrNil(lead.State),
		stringOrNil(lead.Size),
		stringOrNil(lead.Message),
	)
	if err := row.Scan(&lead.CreatedAt); err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// FindByID retrieves a lead by identifier.
func (r *PGXLeadsRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)

	var lead entity.Lead
	if err := scanLead(row, &lead); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("query lead by id: %w", err)
	}
	return &lead, nil
}

// List returns leads newest first, paginated.
func (r *PGXLeadsRepository) List(ctx context.Context, filter dto.LeadListFilter) ([]entity.Lead, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + leadColumns + ` FROM leads`)

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if q := strings.TrimSpace(filter.Q); q != "" {
		pattern := fmt.Sprintf("%%%s%%", q)
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", idx, idx, idx))
		args = append(args, pattern)
		idx++
	}
	if filter.City != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(city) = LOWER($%d)", idx))
		args = append(args, filter.City)
		idx++
	}
	if filter.State != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(state) = LOWER($%d)", idx))
		args = append(args, filter.State)
		idx++
	}
	if filter.Since != nil {
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", idx))
		args = append(args, *filter.Since)
		idx++
	}

	if len(clauses) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(clauses, " AND "))
	}
	query.WriteString(" ORDER BY created_at DESC")

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	query.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]entity.Lead, 0)
	for rows.Next() {
		var lead entity.Lead
		if err := scanLead(rows, &lead); err != nil {
			return nil, fmt.Errorf("scan lead row: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

func scanLead(row pgx.Row, lead *entity.Lead) error {
	return row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Address,
		&lead.City,
		&lead.State,
		&lead.Size,
		&lead.Message,
		&lead.CreatedAt,
	)
}

var _ LeadsRepository = (*PGXLeadsRepository)(nil)
