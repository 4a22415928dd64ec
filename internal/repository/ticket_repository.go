package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	MarkResolved(ctx context.Context, number, resolution string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, title, description, source, source_reference,
               requester_id, requester_email, requester_name, location, asset_tag,
               category, subcategory, priority, status, assigned_team,
               classification, classification_source, suggestions, attachments,
               response_due, resolution_due, resolution, created_at, updated_at, resolved_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	classification, err := json.Marshal(ticket.Classification)
	if err != nil {
		return fmt.Errorf("encode classification: %w", err)
	}
	suggestions, err := marshalList(ticket.Suggestions)
	if err != nil {
		return fmt.Errorf("encode suggestions: %w", err)
	}
	attachments, err := marshalList(ticket.Attachments)
	if err != nil {
		return fmt.Errorf("encode attachments: %w", err)
	}

	const query = `
        INSERT INTO tickets (ticket_number, title, description, source, source_reference,
            requester_id, requester_email, requester_name, location, asset_tag,
            category, subcategory, priority, status, assigned_team,
            classification, classification_source, suggestions, attachments,
            response_due, resolution_due)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.Title,
		ticket.Description,
		ticket.Source,
		ticket.SourceReference,
		ticket.RequesterID,
		ticket.RequesterEmail,
		ticket.RequesterName,
		ticket.Location,
		ticket.AssetTag,
		ticket.Category,
		ticket.Subcategory,
		ticket.Priority,
		ticket.Status,
		ticket.AssignedTeam,
		classification,
		ticket.ClassificationSource,
		suggestions,
		attachments,
		ticket.ResponseDue,
		ticket.ResolutionDue,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_number=$1`

	var (
		ticket                                   domain.Ticket
		classification, suggestions, attachments []byte
	)
	if err := r.pool.QueryRow(ctx, query, number).Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Title,
		&ticket.Description,
		&ticket.Source,
		&ticket.SourceReference,
		&ticket.RequesterID,
		&ticket.RequesterEmail,
		&ticket.RequesterName,
		&ticket.Location,
		&ticket.AssetTag,
		&ticket.Category,
		&ticket.Subcategory,
		&ticket.Priority,
		&ticket.Status,
		&ticket.AssignedTeam,
		&classification,
		&ticket.ClassificationSource,
		&suggestions,
		&attachments,
		&ticket.ResponseDue,
		&ticket.ResolutionDue,
		&ticket.Resolution,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(classification, &ticket.Classification); err != nil {
		return nil, fmt.Errorf("decode classification: %w", err)
	}
	if err := json.Unmarshal(suggestions, &ticket.Suggestions); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	if err := json.Unmarshal(attachments, &ticket.Attachments); err != nil {
		return nil, fmt.Errorf("decode attachments: %w", err)
	}
	return &ticket, nil
}

func (r *ticketRepository) MarkResolved(ctx context.Context, number, resolution string) error {
	const query = `
        UPDATE tickets SET status=$1, resolution=$2, resolved_at=NOW(), updated_at=NOW()
        WHERE ticket_number=$3`
	cmd, err := r.pool.Exec(ctx, query, domain.TicketStatusResolved, resolution, number)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// marshalList encodes a nil slice as an empty JSON array.
func marshalList[T any](items []T) ([]byte, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(items)
}
