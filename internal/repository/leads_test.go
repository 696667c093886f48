package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/octobees/rolloff-rates/internal/dto"
	"github.com/octobees/rolloff-rates/internal/entity"
)

func scanLeadRow(id uuid.UUID, name string) func(dest ...any) error {
	return func(dest ...any) error {
		*dest[0].(*uuid.UUID) = id
		*dest[1].(*string) = name
		*dest[2].(*string) = "jane@example.com"
		*dest[3].(*string) = "+15125550100"
		*dest[4].(*string) = ""
		*dest[5].(*string) = "Austin"
		*dest[6].(*string) = "TX"
		*dest[7].(*string) = "20"
		*dest[8].(*string) = ""
		*dest[9].(*time.Time) = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		return nil
	}
}

func TestPGXLeadsRepository_Create(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var gotArgs []any
	repo := &PGXLeadsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			gotArgs = args
			return &stubRow{scan: func(dest ...any) error {
				*dest[0].(*time.Time) = created
				return nil
			}}
		},
	}}

	lead := &entity.Lead{Name: "Jane", Email: "jane@example.com", Phone: "+15125550100", City: "Austin"}
	if err := repo.Create(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	if !lead.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at from database, got %v", lead.CreatedAt)
	}
	if len(gotArgs) != 9 {
		t.Fatalf("expected 9 args, got %d", len(gotArgs))
	}
	if gotArgs[4] != nil {
		t.Fatalf("expected empty address to be stored as NULL, got %v", gotArgs[4])
	}
	if gotArgs[5] != "Austin" {
		t.Fatalf("unexpected city arg: %v", gotArgs[5])
	}

	if err := repo.Create(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil lead")
	}
}

func TestPGXLeadsRepository_FindByID(t *testing.T) {
	id := uuid.MustParse("cccccccc-cccc-cccc-cccc-cccccccccccc")
	repo := &PGXLeadsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: scanLeadRow(id, "Jane")}
		},
	}}

	lead, err := repo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.ID != id || lead.City != "Austin" {
		t.Fatalf("unexpected lead: %+v", lead)
	}

	repo.pool = &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}
	if _, err := repo.FindByID(context.Background(), id); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestPGXLeadsRepository_List(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := map[string]struct {
		filter      dto.LeadListFilter
		wantClauses []string
		wantArgs    []any
	}{
		"defaults": {
			filter:   dto.LeadListFilter{},
			wantArgs: []any{20, 0},
		},
		"search and city": {
			filter:      dto.LeadListFilter{Q: "jane", City: "Austin", Page: 2, PerPage: 10},
			wantClauses: []string{"name ILIKE $1", "LOWER(city) = LOWER($2)", "LIMIT $3 OFFSET $4"},
			wantArgs:    []any{"%jane%", "Austin", 10, 10},
		},
		"since and capped page size": {
			filter:      dto.LeadListFilter{State: "TX", Since: &since, PerPage: 500},
			wantClauses: []string{"LOWER(state) = LOWER($1)", "created_at >= $2"},
			wantArgs:    []any{"TX", since, 100, 0},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var gotQuery string
			var gotArgs []any
			repo := &PGXLeadsRepository{pool: &stubPool{
				queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
					gotQuery, gotArgs = query, args
					return &stubRows{scans: []func(dest ...any) error{
						scanLeadRow(uuid.New(), "Jane"),
						scanLeadRow(uuid.New(), "John"),
					}}, nil
				},
			}}

			leads, err := repo.List(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(leads) != 2 || leads[1].Name != "John" {
				t.Fatalf("unexpected leads: %+v", leads)
			}
			for _, clause := range tt.wantClauses {
				if !strings.Contains(gotQuery, clause) {
					t.Fatalf("expected query to contain %q, got %s", clause, gotQuery)
				}
			}
			if !strings.Contains(gotQuery, "ORDER BY created_at DESC") {
				t.Fatalf("expected newest first ordering, got %s", gotQuery)
			}
			if len(gotArgs) != len(tt.wantArgs) {
				t.Fatalf("expected args %v, got %v", tt.wantArgs, gotArgs)
			}
			for i := range tt.wantArgs {
				if gotArgs[i] != tt.wantArgs[i] {
					t.Fatalf("arg %d: expected %v, got %v", i, tt.wantArgs[i], gotArgs[i])
				}
			}
		})
	}
}

func TestPGXLeadsRepository_ListEmpty(t *testing.T) {
	repo := &PGXLeadsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return &stubRows{}, nil
		},
	}}

	leads, err := repo.List(context.Background(), dto.LeadListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if leads == nil || len(leads) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", leads)
	}
}
