package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/proposal-backend/internal/codec"
	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type ProposalRepositoryAdapter struct {
	db *sqlx.DB
}

func NewProposalRepositoryAdapter(db *sqlx.DB) *ProposalRepositoryAdapter {
	return &ProposalRepositoryAdapter{db: db}
}

var _ repository.ProposalRepository = (*ProposalRepositoryAdapter)(nil)

var proposalColumns = `id, provider_id, client_id, project_id, title, status, share_link,
	sent_at, accepted_at, rejected_at, current_version, created_at, updated_at, ` + sectionColumnList

func (r *ProposalRepositoryAdapter) Create(ctx context.Context, proposal *entity.Proposal, initial *entity.Version) error {
	cols, err := encodeSections(proposal.Document)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.Persistence(err, "не удалось начать транзакцию")
	}
	defer tx.Rollback()

	query := `INSERT INTO proposals (` + proposalColumns + `) VALUES (` + placeholders(1, 13+len(codec.Sections)) + `)`
	args := append([]any{
		proposal.ID, nullUUID(proposal.ProviderID), nullUUID(proposal.ClientID), nullUUID(proposal.ProjectID),
		proposal.Title, proposal.Status.String(), proposal.ShareLink,
		proposal.SentAt, proposal.AcceptedAt, proposal.RejectedAt,
		proposal.CurrentVersion, proposal.CreatedAt, proposal.UpdatedAt,
	}, cols.values()...)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperror.Persistence(err, "не удалось создать предложение")
	}
	if err := insertVersion(ctx, tx, initial); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.Persistence(err, "не удалось зафиксировать создание предложения")
	}
	return nil
}

func (r *ProposalRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	var row proposalRow
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrProposalNotFound
		}
		return nil, apperror.Persistence(err, "не удалось получить предложение")
	}
	return row.toEntity(), nil
}

func (r *ProposalRepositoryAdapter) List(ctx context.Context, filter repository.ProposalFilter) ([]*entity.Proposal, int, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.ProviderID != uuid.Nil {
		add("provider_id = $%d", filter.ProviderID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status.String())
	}
	if filter.ClientID != uuid.Nil {
		add("client_id = $%d", filter.ClientID)
	}
	if filter.ProjectID != uuid.Nil {
		add("project_id = $%d", filter.ProjectID)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM proposals`+where, args...); err != nil {
		return nil, 0, apperror.Persistence(err, "не удалось посчитать предложения")
	}

	query := fmt.Sprintf(`SELECT %s FROM proposals%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		proposalColumns, where, len(args)+1, len(args)+2)
	var rows []proposalRow
	if err := r.db.SelectContext(ctx, &rows, query, append(args, filter.Limit, filter.Offset)...); err != nil {
		return nil, 0, apperror.Persistence(err, "не удалось получить предложения")
	}
	return toProposalEntities(rows), total, nil
}

func (r *ProposalRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	if err != nil {
		return apperror.Persistence(err, "не удалось удалить предложение")
	}
	return requireAffected(res, apperror.ErrProposalNotFound)
}

func (r *ProposalRepositoryAdapter) UpdateDetails(ctx context.Context, proposal *entity.Proposal) error {
	query := `
		UPDATE proposals SET title = $2, client_id = $3, project_id = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		proposal.ID, proposal.Title, nullUUID(proposal.ClientID), nullUUID(proposal.ProjectID), proposal.UpdatedAt,
	)
	if err != nil {
		return apperror.Persistence(err, "не удалось обновить предложение")
	}
	return requireAffected(res, apperror.ErrProposalNotFound)
}

func (r *ProposalRepositoryAdapter) SaveDocument(ctx context.Context, proposal *entity.Proposal, version *entity.Version) error {
	cols, err := encodeSections(proposal.Document)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.Persistence(err, "не удалось начать транзакцию")
	}
	defer tx.Rollback()

	query := `UPDATE proposals SET current_version = $2, updated_at = $3, ` + sectionAssignments(5) + `
		WHERE id = $1 AND current_version = $4`
	args := append([]any{proposal.ID, version.VersionNumber, proposal.UpdatedAt, version.VersionNumber - 1}, cols.values()...)
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return apperror.Persistence(err, "не удалось сохранить документ")
	}
	if n, err := res.RowsAffected(); err != nil {
		return apperror.Persistence(err, "не удалось сохранить документ")
	} else if n == 0 {
		var current int
		if err := tx.GetContext(ctx, &current, `SELECT current_version FROM proposals WHERE id = $1`, proposal.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrProposalNotFound
			}
			return apperror.Persistence(err, "не удалось сохранить документ")
		}
		return apperror.VersionConflict(version.VersionNumber-1, current)
	}
	if err := insertVersion(ctx, tx, version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.Persistence(err, "не удалось зафиксировать сохранение документа")
	}
	return nil
}

func (r *ProposalRepositoryAdapter) UpdateStatus(ctx context.Context, proposal *entity.Proposal, from valueobject.ProposalStatus) error {
	query := `
		UPDATE proposals SET status = $3, share_link = $4, sent_at = $5, accepted_at = $6,
		rejected_at = $7, updated_at = $8
		WHERE id = $1 AND status = $2
	`
	res, err := r.db.ExecContext(ctx, query,
		proposal.ID, from.String(), proposal.Status.String(), proposal.ShareLink,
		proposal.SentAt, proposal.AcceptedAt, proposal.RejectedAt, proposal.UpdatedAt,
	)
	if err != nil {
		return apperror.Persistence(err, "не удалось обновить статус предложения")
	}
	if n, err := res.RowsAffected(); err != nil {
		return apperror.Persistence(err, "не удалось обновить статус предложения")
	} else if n == 0 {
		status, err := r.currentStatus(ctx, proposal.ID)
		if err != nil {
			return err
		}
		return apperror.New(apperror.ErrCodeConflict, fmt.Sprintf("статус предложения изменился: %s", status))
	}
	return nil
}

func (r *ProposalRepositoryAdapter) UpdateSignature(ctx context.Context, proposal *entity.Proposal) error {
	encoded, err := codec.EncodeSignature(proposal.Document.Signature())
	if err != nil {
		return apperror.Persistence(err, "не удалось закодировать подпись")
	}
	if err := codec.Verify(codec.SectionSignature, encoded); err != nil {
		return apperror.Persistence(err, "подпись не прошла проверку перед записью")
	}

	query := `UPDATE proposals SET signature = $2, updated_at = $3 WHERE id = $1 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, proposal.ID, encoded, proposal.UpdatedAt, valueobject.ProposalStatusSent.String())
	if err != nil {
		return apperror.Persistence(err, "не удалось сохранить подпись")
	}
	if n, err := res.RowsAffected(); err != nil {
		return apperror.Persistence(err, "не удалось сохранить подпись")
	} else if n == 0 {
		status, err := r.currentStatus(ctx, proposal.ID)
		if err != nil {
			return err
		}
		return apperror.NotSignable(status)
	}
	return nil
}

func (r *ProposalRepositoryAdapter) currentStatus(ctx context.Context, id uuid.UUID) (string, error) {
	var status string
	if err := r.db.GetContext(ctx, &status, `SELECT status FROM proposals WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperror.ErrProposalNotFound
		}
		return "", apperror.Persistence(err, "не удалось получить статус предложения")
	}
	return status, nil
}

type proposalRow struct {
	ID             uuid.UUID     `db:"id"`
	ProviderID     uuid.NullUUID `db:"provider_id"`
	ClientID       uuid.NullUUID `db:"client_id"`
	ProjectID      uuid.NullUUID `db:"project_id"`
	Title          string        `db:"title"`
	Status         string        `db:"status"`
	ShareLink      string        `db:"share_link"`
	SentAt         *time.Time    `db:"sent_at"`
	AcceptedAt     *time.Time    `db:"accepted_at"`
	RejectedAt     *time.Time    `db:"rejected_at"`
	CurrentVersion int           `db:"current_version"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
	sectionColumns
}

func (p *proposalRow) toEntity() *entity.Proposal {
	status, err := valueobject.NewProposalStatus(p.Status)
	if err != nil {
		status = valueobject.ProposalStatusDraft
	}
	return &entity.Proposal{
		ID:             p.ID,
		ProviderID:     p.ProviderID.UUID,
		ClientID:       p.ClientID.UUID,
		ProjectID:      p.ProjectID.UUID,
		Title:          p.Title,
		Status:         status,
		Document:       p.document(),
		ShareLink:      p.ShareLink,
		SentAt:         p.SentAt,
		AcceptedAt:     p.AcceptedAt,
		RejectedAt:     p.RejectedAt,
		CurrentVersion: p.CurrentVersion,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toProposalEntities(rows []proposalRow) []*entity.Proposal {
	result := make([]*entity.Proposal, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Persistence(err, "не удалось проверить результат записи")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
