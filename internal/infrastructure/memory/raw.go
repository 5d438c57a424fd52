package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// RawRepository читает и пишет секции в обход кодека. Через него же тесты
// подкладывают записи в устаревших форматах.
type RawRepository struct {
	s *Store
}

func (r *RawRepository) ScanRaw(_ context.Context, kind repository.RecordKind, afterID uuid.UUID, limit int) ([]repository.RawRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var records []repository.RawRecord
	add := func(id uuid.UUID, fields map[string]string) {
		if bytes.Compare(id[:], afterID[:]) > 0 {
			records = append(records, repository.RawRecord{Kind: kind, ID: id, Fields: copyFields(fields)})
		}
	}
	switch kind {
	case repository.RecordProposal:
		for id, row := range r.s.proposalsByID {
			add(id, row.Fields)
		}
	case repository.RecordVersion:
		for id, row := range r.s.versionsByID {
			add(id, row.Fields)
		}
	case repository.RecordTemplate:
		for id, row := range r.s.templatesByID {
			add(id, row.Fields)
		}
	default:
		return nil, fmt.Errorf("memory: неизвестный вид записи %q", kind)
	}

	sort.Slice(records, func(i, j int) bool {
		return bytes.Compare(records[i].ID[:], records[j].ID[:]) < 0
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (r *RawRepository) RewriteFields(_ context.Context, kind repository.RecordKind, id uuid.UUID, fields map[string]string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	merge := func(dst map[string]string) map[string]string {
		out := copyFields(dst)
		for k, v := range fields {
			out[k] = v
		}
		return out
	}
	switch kind {
	case repository.RecordProposal:
		row, ok := r.s.proposalsByID[id]
		if !ok {
			return apperror.ErrProposalNotFound
		}
		row.Fields = merge(row.Fields)
		r.s.proposalsByID[id] = row
	case repository.RecordVersion:
		row, ok := r.s.versionsByID[id]
		if !ok {
			return apperror.VersionNotFound(id.String())
		}
		row.Fields = merge(row.Fields)
		r.s.versionsByID[id] = row
	case repository.RecordTemplate:
		row, ok := r.s.templatesByID[id]
		if !ok {
			return apperror.ErrTemplateNotFound
		}
		row.Fields = merge(row.Fields)
		r.s.templatesByID[id] = row
	default:
		return fmt.Errorf("memory: неизвестный вид записи %q", kind)
	}
	return nil
}
