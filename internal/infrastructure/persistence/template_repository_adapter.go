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

type TemplateRepositoryAdapter struct {
	db *sqlx.DB
}

func NewTemplateRepositoryAdapter(db *sqlx.DB) *TemplateRepositoryAdapter {
	return &TemplateRepositoryAdapter{db: db}
}

var _ repository.TemplateRepository = (*TemplateRepositoryAdapter)(nil)

var templateColumns = `id, provider_id, name, description, created_at, updated_at, ` + sectionColumnList

func (r *TemplateRepositoryAdapter) Create(ctx context.Context, tmpl *entity.ProposalTemplate) error {
	cols, err := encodeSections(tmpl.Document)
	if err != nil {
		return err
	}
	query := `INSERT INTO proposal_templates (` + templateColumns + `) VALUES (` + placeholders(1, 6+len(codec.Sections)) + `)`
	args := append([]any{
		tmpl.ID, tmpl.ProviderID, tmpl.Name, tmpl.Description, tmpl.CreatedAt, tmpl.UpdatedAt,
	}, cols.values()...)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return apperror.Persistence(err, "не удалось создать шаблон")
	}
	return nil
}

func (r *TemplateRepositoryAdapter) Update(ctx context.Context, tmpl *entity.ProposalTemplate) error {
	cols, err := encodeSections(tmpl.Document)
	if err != nil {
		return err
	}
	query := `UPDATE proposal_templates SET name = $2, description = $3, updated_at = $4, ` + sectionAssignments(5) + `
		WHERE id = $1`
	args := append([]any{tmpl.ID, tmpl.Name, tmpl.Description, tmpl.UpdatedAt}, cols.values()...)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperror.Persistence(err, "не удалось обновить шаблон")
	}
	return requireAffected(res, apperror.ErrTemplateNotFound)
}

func (r *TemplateRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM proposal_templates WHERE id = $1`, id)
	if err != nil {
		return apperror.Persistence(err, "не удалось удалить шаблон")
	}
	return requireAffected(res, apperror.ErrTemplateNotFound)
}

func (r *TemplateRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.ProposalTemplate, error) {
	var row templateRow
	query := `SELECT ` + templateColumns + ` FROM proposal_templates WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrTemplateNotFound
		}
		return nil, apperror.Persistence(err, "не удалось получить шаблон")
	}
	return row.toEntity(), nil
}

func (r *TemplateRepositoryAdapter) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*entity.ProposalTemplate, error) {
	var rows []templateRow
	query := `SELECT ` + templateColumns + ` FROM proposal_templates WHERE provider_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &rows, query, providerID); err != nil {
		return nil, apperror.Persistence(err, "не удалось получить шаблоны")
	}
	result := make([]*entity.ProposalTemplate, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

type templateRow struct {
	ID          uuid.UUID `db:"id"`
	ProviderID  uuid.UUID `db:"provider_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	sectionColumns
}

func (t *templateRow) toEntity() *entity.ProposalTemplate {
	return &entity.ProposalTemplate{
		ID:          t.ID,
		ProviderID:  t.ProviderID,
		Name:        t.Name,
		Description: t.Description,
		Document:    t.document(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
