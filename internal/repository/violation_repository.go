package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-compliance-service/internal/domain"
)

// ViolationRepository persists verdicts keyed uniquely by ticket sys_id.
// A second validation of the same ticket overwrites, never duplicates.
type ViolationRepository interface {
	Upsert(ctx context.Context, verdict *domain.ViolationVerdict) error
	ListProcessedBetween(ctx context.Context, start, end time.Time) ([]domain.ViolationVerdict, error)
	Ping(ctx context.Context) error
}

type violationRepository struct {
	pool *pgxpool.Pool
}

// NewViolationRepository instantiates repository.
func NewViolationRepository(pool *pgxpool.Pool) ViolationRepository {
	return &violationRepository{pool: pool}
}

func (r *violationRepository) Upsert(ctx context.Context, verdict *domain.ViolationVerdict) error {
	reasons, err := json.Marshal(verdict.Reasons)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO violation_tracking
            (ticket_sys_id, ticket_number, ticket_type, is_violated, strict_validation,
             reasons, penalty_percentage, financial_impact, validated_at,
             processed, financial_impact_calculated)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,TRUE,TRUE)
        ON CONFLICT (ticket_sys_id) DO UPDATE SET
            ticket_number=EXCLUDED.ticket_number,
            ticket_type=EXCLUDED.ticket_type,
            is_violated=EXCLUDED.is_violated,
            strict_validation=EXCLUDED.strict_validation,
            reasons=EXCLUDED.reasons,
            penalty_percentage=EXCLUDED.penalty_percentage,
            financial_impact=EXCLUDED.financial_impact,
            validated_at=EXCLUDED.validated_at,
            processed=TRUE,
            financial_impact_calculated=TRUE,
            updated_at=NOW()`
	_, err = r.pool.Exec(ctx, query,
		verdict.TicketSysID,
		verdict.TicketNumber,
		verdict.TicketType,
		verdict.IsViolated,
		verdict.StrictValidation,
		reasons,
		verdict.PenaltyPercentage,
		verdict.FinancialImpact,
		verdict.ValidatedAt,
	)
	return err
}

func (r *violationRepository) ListProcessedBetween(ctx context.Context, start, end time.Time) ([]domain.ViolationVerdict, error) {
	const query = `
        SELECT ticket_sys_id, ticket_number, ticket_type, is_violated, strict_validation,
               reasons, penalty_percentage, financial_impact, validated_at
        FROM violation_tracking
        WHERE processed AND validated_at >= $1 AND validated_at <= $2
        ORDER BY validated_at`
	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ViolationVerdict
	for rows.Next() {
		var (
			verdict domain.ViolationVerdict
			reasons []byte
		)
		if err := rows.Scan(
			&verdict.TicketSysID,
			&verdict.TicketNumber,
			&verdict.TicketType,
			&verdict.IsViolated,
			&verdict.StrictValidation,
			&reasons,
			&verdict.PenaltyPercentage,
			&verdict.FinancialImpact,
			&verdict.ValidatedAt,
		); err != nil {
			return nil, err
		}
		if len(reasons) > 0 {
			if err := json.Unmarshal(reasons, &verdict.Reasons); err != nil {
				return nil, err
			}
		}
		result = append(result, verdict)
	}
	return result, rows.Err()
}

func (r *violationRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
