package persistence

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ignatzorin/proposal-backend/internal/codec"
	"github.com/ignatzorin/proposal-backend/internal/domain/document"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// sectionColumns содержит колонки секций документа, общие для предложений, версий и
// шаблонов. Имена колонок совпадают с именами секций.
type sectionColumns struct {
	ScopeOfWork            sql.NullString `db:"scope_of_work"`
	Deliverables           sql.NullString `db:"deliverables"`
	Timeline               sql.NullString `db:"timeline"`
	Pricing                sql.NullString `db:"pricing"`
	PaymentSchedule        sql.NullString `db:"payment_schedule"`
	TermsAndConditions     sql.NullString `db:"terms_and_conditions"`
	ClientResponsibilities sql.NullString `db:"client_responsibilities"`
	Signature              sql.NullString `db:"signature"`
}

var sectionColumnList = func() string {
	names := make([]string, len(codec.Sections))
	for i, s := range codec.Sections {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}()

func (c *sectionColumns) pointers() []*sql.NullString {
	return []*sql.NullString{
		&c.ScopeOfWork,
		&c.Deliverables,
		&c.Timeline,
		&c.Pricing,
		&c.PaymentSchedule,
		&c.TermsAndConditions,
		&c.ClientResponsibilities,
		&c.Signature,
	}
}

// fields отдаёт непустые колонки как есть; разбор делает document.FromFields.
func (c sectionColumns) fields() map[string]string {
	fields := make(map[string]string, len(codec.Sections))
	for i, col := range c.pointers() {
		if col.Valid {
			fields[codec.Sections[i].String()] = col.String
		}
	}
	return fields
}

func (c sectionColumns) document() *document.Document {
	return document.FromFields(c.fields())
}

// values возвращает аргументы для INSERT/UPDATE в порядке codec.Sections.
func (c sectionColumns) values() []any {
	out := make([]any, 0, len(codec.Sections))
	for _, col := range c.pointers() {
		out = append(out, *col)
	}
	return out
}

// encodeSections кодирует документ и проверяет каждую секцию перед записью.
// Запись, не прошедшая проверку, не выполняется.
func encodeSections(doc *document.Document) (sectionColumns, error) {
	var cols sectionColumns
	fields, err := doc.Fields()
	if err != nil {
		return cols, apperror.Persistence(err, "не удалось закодировать документ")
	}
	ptrs := cols.pointers()
	for i, section := range codec.Sections {
		encoded := fields[section.String()]
		if err := codec.Verify(section, encoded); err != nil {
			return cols, apperror.Persistence(err, "документ не прошёл проверку перед записью")
		}
		*ptrs[i] = sql.NullString{String: encoded, Valid: true}
	}
	return cols, nil
}

// placeholders возвращает "$from, $from+1, ..." для n аргументов.
func placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(parts, ", ")
}

// sectionAssignments возвращает "scope_of_work = $from, ..." для UPDATE.
func sectionAssignments(from int) string {
	parts := make([]string, len(codec.Sections))
	for i, s := range codec.Sections {
		parts[i] = fmt.Sprintf("%s = $%d", s.String(), from+i)
	}
	return strings.Join(parts, ", ")
}
