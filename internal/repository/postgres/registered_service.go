package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/repository"
)

type registeredServiceRepository struct {
	db *sql.DB
}

func NewRegisteredServiceRepository(db *sql.DB) repository.RegisteredServiceRepository {
	return &registeredServiceRepository{db: db}
}

func (r *registeredServiceRepository) GetByIDAndKey(ctx context.Context, id int64, apiKey string) (*domain.RegisteredService, error) {
	svc := &domain.RegisteredService{}
	query := `SELECT id, name, api_key, is_active FROM registered_services
		WHERE id = $1 AND api_key = $2 AND is_active = TRUE`
	err := r.db.QueryRowContext(ctx, query, id, apiKey).Scan(&svc.ID, &svc.Name, &svc.APIKey, &svc.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInvalidCredential
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}
