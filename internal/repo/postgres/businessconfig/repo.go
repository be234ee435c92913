package businessconfig

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/port"
)

const (
	queryCreate = `
		INSERT INTO business_configs (business_id, key, values, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	queryFindByBusinessAndKey = `
		SELECT id, business_id, key, values, created_at
		FROM business_configs
		WHERE business_id = $1 AND key = $2
		ORDER BY created_at ASC`
)

func New(pool *pgxpool.Pool) port.BusinessConfigRepository {
	return &Repository{pool: pool}
}

type Repository struct {
	pool *pgxpool.Pool
}

func (r *Repository) Create(ctx context.Context, c *entity.BusinessConfig) error {
	values, err := json.Marshal(c.Values)
	if err != nil {
		return fmt.Errorf("businessconfig: marshaling values: %w", err)
	}

	err = r.pool.QueryRow(ctx, queryCreate, c.BusinessID, c.Key, values, c.CreatedAt).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("businessconfig: creating: %w", err)
	}
	return nil
}

func (r *Repository) FindByBusinessAndKey(ctx context.Context, businessID uuid.UUID, key entity.BusinessConfigKey) ([]*entity.BusinessConfig, error) {
	rows, err := r.pool.Query(ctx, queryFindByBusinessAndKey, businessID, key)
	if err != nil {
		return nil, fmt.Errorf("businessconfig: querying: %w", err)
	}
	defer rows.Close()

	var configs []*entity.BusinessConfig
	for rows.Next() {
		c := &entity.BusinessConfig{}
		var raw []byte
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.Key, &raw, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("businessconfig: scanning: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &c.Values); err != nil {
				return nil, fmt.Errorf("businessconfig: unmarshaling values: %w", err)
			}
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("businessconfig: iterating: %w", err)
	}
	return configs, nil
}
