package sqlite

import (
	"context"
	"database/sql"

	"github.com/lexidrill/lexidrill/internal/logger"
	"github.com/lexidrill/lexidrill/internal/repository"
)

type adminRepository struct {
	db *sql.DB
}

// NewAdminRepository creates a StoreAdmin implementation used by snapshot
// import with the replace policy.
func NewAdminRepository(db *sql.DB) repository.StoreAdmin {
	return &adminRepository{db: db}
}

func (r *adminRepository) ClearAll(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("admin_repo")
	log.Info("clearing all topics and words")

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM words`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM topics`)
		return err
	})
}
