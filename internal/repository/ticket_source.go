package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-compliance-service/internal/domain"
)

// TicketSource supplies decoded ticket snapshots. The sync pipeline that
// populates the backing rows is outside this service; this boundary is where
// raw rows become typed snapshots, once, so downstream compliance logic never
// touches loosely-typed data.
type TicketSource interface {
	GetSnapshot(ctx context.Context, sysID string, ticketType domain.TicketType) (*domain.TicketSnapshot, error)
	ListCreatedBetween(ctx context.Context, ticketType domain.TicketType, start, end time.Time) ([]domain.TicketSnapshot, error)
	Ping(ctx context.Context) error
}

type ticketSource struct {
	pool *pgxpool.Pool
}

// NewTicketSource instantiates the pgx-backed ticket source.
func NewTicketSource(pool *pgxpool.Pool) TicketSource {
	return &ticketSource{pool: pool}
}

const ticketColumns = `sys_id, number, ticket_type, state, priority,
       assignment_group_id, assignment_group_name,
       sys_created_on, sys_updated_on, first_response_at, resolved_at, closed_at,
       contractual_violation`

func (r *ticketSource) GetSnapshot(ctx context.Context, sysID string, ticketType domain.TicketType) (*domain.TicketSnapshot, error) {
	const query = `SELECT ` + ticketColumns + `
        FROM ticket_snapshots WHERE sys_id=$1 AND ticket_type=$2`
	row := r.pool.QueryRow(ctx, query, sysID, ticketType)
	snapshot, err := scanTicketSnapshot(row)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *ticketSource) ListCreatedBetween(ctx context.Context, ticketType domain.TicketType, start, end time.Time) ([]domain.TicketSnapshot, error) {
	const query = `SELECT ` + ticketColumns + `
        FROM ticket_snapshots
        WHERE ticket_type=$1 AND sys_created_on >= $2 AND sys_created_on <= $3
        ORDER BY sys_created_on`
	rows, err := r.pool.Query(ctx, query, ticketType, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketSnapshot
	for rows.Next() {
		snapshot, err := scanTicketSnapshot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *snapshot)
	}
	return result, rows.Err()
}

func (r *ticketSource) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanTicketSnapshot(row pgx.Row) (*domain.TicketSnapshot, error) {
	var (
		snapshot  domain.TicketSnapshot
		groupID   *string
		groupName *string
	)
	if err := row.Scan(
		&snapshot.SysID,
		&snapshot.Number,
		&snapshot.Type,
		&snapshot.State,
		&snapshot.Priority,
		&groupID,
		&groupName,
		&snapshot.CreatedOn,
		&snapshot.UpdatedOn,
		&snapshot.FirstResponseAt,
		&snapshot.ResolvedAt,
		&snapshot.ClosedAt,
		&snapshot.ContractualViolation,
	); err != nil {
		return nil, err
	}
	if groupID != nil {
		snapshot.AssignmentGroup.Value = *groupID
	}
	if groupName != nil {
		snapshot.AssignmentGroup.DisplayValue = *groupName
	}
	return &snapshot, nil
}
