package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/proposal-backend/internal/codec"
	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type VersionRepositoryAdapter struct {
	db *sqlx.DB
}

func NewVersionRepositoryAdapter(db *sqlx.DB) *VersionRepositoryAdapter {
	return &VersionRepositoryAdapter{db: db}
}

var _ repository.VersionRepository = (*VersionRepositoryAdapter)(nil)

var versionColumns = `id, proposal_id, version_number, content_hash, reason, restored_from, created_at, ` + sectionColumnList

// insertVersion выполняется в транзакции записи документа.
func insertVersion(ctx context.Context, tx *sqlx.Tx, v *entity.Version) error {
	cols, err := encodeSections(v.Content)
	if err != nil {
		return err
	}
	var restoredFrom uuid.NullUUID
	if v.RestoredFrom != nil {
		restoredFrom = uuid.NullUUID{UUID: *v.RestoredFrom, Valid: true}
	}

	query := `INSERT INTO proposal_versions (` + versionColumns + `) VALUES (` + placeholders(1, 7+len(codec.Sections)) + `)`
	args := append([]any{
		v.ID, v.ProposalID, v.VersionNumber, v.ContentHash, v.Reason.String(), restoredFrom, v.CreatedAt,
	}, cols.values()...)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperror.Persistence(err, "не удалось сохранить версию")
	}
	return nil
}

func (r *VersionRepositoryAdapter) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*entity.Version, error) {
	var rows []versionRow
	query := `SELECT ` + versionColumns + ` FROM proposal_versions WHERE proposal_id = $1 ORDER BY version_number ASC`
	if err := r.db.SelectContext(ctx, &rows, query, proposalID); err != nil {
		return nil, apperror.Persistence(err, "не удалось получить версии")
	}
	result := make([]*entity.Version, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *VersionRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Version, error) {
	var row versionRow
	query := `SELECT ` + versionColumns + ` FROM proposal_versions WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.VersionNotFound(id.String())
		}
		return nil, apperror.Persistence(err, "не удалось получить версию")
	}
	return row.toEntity(), nil
}

type versionRow struct {
	ID            uuid.UUID     `db:"id"`
	ProposalID    uuid.UUID     `db:"proposal_id"`
	VersionNumber int           `db:"version_number"`
	ContentHash   string        `db:"content_hash"`
	Reason        string        `db:"reason"`
	RestoredFrom  uuid.NullUUID `db:"restored_from"`
	CreatedAt     time.Time     `db:"created_at"`
	sectionColumns
}

func (v *versionRow) toEntity() *entity.Version {
	version := &entity.Version{
		ID:            v.ID,
		ProposalID:    v.ProposalID,
		VersionNumber: v.VersionNumber,
		Content:       v.document(),
		ContentHash:   v.ContentHash,
		Reason:        entity.VersionReason(v.Reason),
		CreatedAt:     v.CreatedAt,
	}
	if v.RestoredFrom.Valid {
		id := v.RestoredFrom.UUID
		version.RestoredFrom = &id
	}
	return version
}
