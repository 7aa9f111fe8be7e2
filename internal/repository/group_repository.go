package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-compliance-service/internal/domain"
)

// GroupRepository reads the support-group catalog.
type GroupRepository interface {
	ListAll(ctx context.Context) ([]domain.SupportGroup, error)
	Ping(ctx context.Context) error
}

type groupRepository struct {
	pool *pgxpool.Pool
}

// NewGroupRepository instantiates repository.
func NewGroupRepository(pool *pgxpool.Pool) GroupRepository {
	return &groupRepository{pool: pool}
}

func (r *groupRepository) ListAll(ctx context.Context) ([]domain.SupportGroup, error) {
	const query = `SELECT sys_id, name, tags, description, owner, temperature
        FROM support_groups ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SupportGroup
	for rows.Next() {
		var group domain.SupportGroup
		if err := rows.Scan(
			&group.SysID,
			&group.Name,
			&group.Tags,
			&group.Description,
			&group.Owner,
			&group.Temperature,
		); err != nil {
			return nil, err
		}
		result = append(result, group)
	}
	return result, rows.Err()
}

func (r *groupRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
