package repository

import (
	"context"

	"github.com/google/uuid"
)

// RecordKind указывает таблицу, в которой лежат секции документа.
type RecordKind string

const (
	RecordProposal RecordKind = "proposal"
	RecordVersion  RecordKind = "version"
	RecordTemplate RecordKind = "template"
)

// RawRecord хранит секции документа в том виде, в каком они лежат в хранилище.
type RawRecord struct {
	Kind   RecordKind
	ID     uuid.UUID
	Fields map[string]string
}

// RawDocumentRepository нужен только перенормализации старых записей: чтение
// и запись в обход кодека.
type RawDocumentRepository interface {
	// ScanRaw возвращает до limit записей с ID больше afterID в порядке ID.
	ScanRaw(ctx context.Context, kind RecordKind, afterID uuid.UUID, limit int) ([]RawRecord, error)
	// RewriteFields перезаписывает только переданные секции.
	RewriteFields(ctx context.Context, kind RecordKind, id uuid.UUID, fields map[string]string) error
}
