package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-compliance-service/internal/domain"
)

// SLARepository reads the SLA configuration table. The engine treats the
// table as read-only; rows are maintained by contract administration.
type SLARepository interface {
	ListAll(ctx context.Context) ([]domain.SLAConfiguration, error)
	ListByTicketType(ctx context.Context, ticketType domain.TicketType) ([]domain.SLAConfiguration, error)
	Ping(ctx context.Context) error
}

type slaRepository struct {
	pool *pgxpool.Pool
}

// NewSLARepository instantiates repository.
func NewSLARepository(pool *pgxpool.Pool) SLARepository {
	return &slaRepository{pool: pool}
}

const slaColumns = `id, ticket_type, metric_type, priority, sla_hours,
       penalty_percentage, business_hours_only, description, created_at, updated_at`

func (r *slaRepository) ListAll(ctx context.Context) ([]domain.SLAConfiguration, error) {
	const query = `SELECT ` + slaColumns + ` FROM sla_configurations
        ORDER BY ticket_type, metric_type, priority`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSLAConfigurations(rows)
}

func (r *slaRepository) ListByTicketType(ctx context.Context, ticketType domain.TicketType) ([]domain.SLAConfiguration, error) {
	const query = `SELECT ` + slaColumns + ` FROM sla_configurations
        WHERE ticket_type=$1 ORDER BY metric_type, priority`
	rows, err := r.pool.Query(ctx, query, ticketType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSLAConfigurations(rows)
}

func (r *slaRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanSLAConfigurations(rows pgx.Rows) ([]domain.SLAConfiguration, error) {
	var result []domain.SLAConfiguration
	for rows.Next() {
		var cfg domain.SLAConfiguration
		if err := rows.Scan(
			&cfg.ID,
			&cfg.TicketType,
			&cfg.MetricType,
			&cfg.Priority,
			&cfg.SLAHours,
			&cfg.PenaltyPercentage,
			&cfg.BusinessHoursOnly,
			&cfg.Description,
			&cfg.CreatedAt,
			&cfg.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, cfg)
	}
	return result, rows.Err()
}
