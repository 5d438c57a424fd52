package persistence

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/proposal-backend/internal/codec"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// RawRepositoryAdapter читает и пишет колонки секций без разбора. Нужен
// только перенормализации.
type RawRepositoryAdapter struct {
	db *sqlx.DB
}

func NewRawRepositoryAdapter(db *sqlx.DB) *RawRepositoryAdapter {
	return &RawRepositoryAdapter{db: db}
}

var _ repository.RawDocumentRepository = (*RawRepositoryAdapter)(nil)

var rawTables = map[repository.RecordKind]string{
	repository.RecordProposal: "proposals",
	repository.RecordVersion:  "proposal_versions",
	repository.RecordTemplate: "proposal_templates",
}

func tableFor(kind repository.RecordKind) (string, error) {
	table, ok := rawTables[kind]
	if !ok {
		return "", fmt.Errorf("persistence: неизвестный вид записи %q", kind)
	}
	return table, nil
}

type rawRow struct {
	ID uuid.UUID `db:"id"`
	sectionColumns
}

func (r *RawRepositoryAdapter) ScanRaw(ctx context.Context, kind repository.RecordKind, afterID uuid.UUID, limit int) ([]repository.RawRecord, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id, %s FROM %s WHERE id > $1 ORDER BY id LIMIT $2`, sectionColumnList, table)
	var rows []rawRow
	if err := r.db.SelectContext(ctx, &rows, query, afterID, limit); err != nil {
		return nil, apperror.Persistence(err, "не удалось прочитать записи")
	}

	records := make([]repository.RawRecord, len(rows))
	for i := range rows {
		records[i] = repository.RawRecord{Kind: kind, ID: rows[i].ID, Fields: rows[i].fields()}
	}
	return records, nil
}

// RewriteFields пишет только колонки известных секций.
func (r *RawRepositoryAdapter) RewriteFields(ctx context.Context, kind repository.RecordKind, id uuid.UUID, fields map[string]string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, err := codec.ParseSection(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	assignments := make([]string, len(names))
	args := []any{id}
	for i, name := range names {
		section, _ := codec.ParseSection(name)
		args = append(args, fields[name])
		assignments[i] = fmt.Sprintf("%s = $%d", section.String(), len(args))
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1`, table, strings.Join(assignments, ", "))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperror.Persistence(err, "не удалось перезаписать секции")
	}
	return requireAffected(res, apperror.New(apperror.ErrCodeNotFound, "запись не найдена"))
}
