package proposal

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-backend/internal/codec"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/logger"
)

const defaultRenormalizeBatch = 100

// RenormalizeReport подводит итог прохода по хранилищу.
type RenormalizeReport struct {
	DryRun    bool                                     `json:"dry_run" yaml:"dry_run"`
	Scanned   int                                      `json:"scanned" yaml:"scanned"`
	Rewritten int                                      `json:"rewritten" yaml:"rewritten"`
	Invalid   int                                      `json:"invalid" yaml:"invalid"`
	Sections  map[codec.Section]map[codec.Encoding]int `json:"sections" yaml:"sections"`
}

func (r *RenormalizeReport) count(section codec.Section, enc codec.Encoding) {
	if r.Sections[section] == nil {
		r.Sections[section] = map[codec.Encoding]int{}
	}
	r.Sections[section][enc]++
}

// RenormalizeUseCase переписывает секции, сохранённые в устаревшем или
// дважды закодированном виде, в каноническую форму. Нечитаемые секции
// остаются как есть: при чтении вместо них подставляется значение по умолчанию.
type RenormalizeUseCase struct {
	raw   repository.RawDocumentRepository
	batch int
}

func NewRenormalizeUseCase(raw repository.RawDocumentRepository, batch int) *RenormalizeUseCase {
	if batch <= 0 {
		batch = defaultRenormalizeBatch
	}
	return &RenormalizeUseCase{raw: raw, batch: batch}
}

func (uc *RenormalizeUseCase) Execute(ctx context.Context, dryRun bool) (*RenormalizeReport, error) {
	report := &RenormalizeReport{
		DryRun:   dryRun,
		Sections: map[codec.Section]map[codec.Encoding]int{},
	}
	log := logger.Component("renormalize")

	for _, kind := range []repository.RecordKind{repository.RecordProposal, repository.RecordVersion, repository.RecordTemplate} {
		after := uuid.Nil
		for {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			records, err := uc.raw.ScanRaw(ctx, kind, after, uc.batch)
			if err != nil {
				return report, err
			}
			if len(records) == 0 {
				break
			}

			for _, rec := range records {
				report.Scanned++
				changed := uc.normalize(rec, report, log)
				if len(changed) == 0 {
					continue
				}
				report.Rewritten++
				if dryRun {
					continue
				}
				if err := uc.raw.RewriteFields(ctx, rec.Kind, rec.ID, changed); err != nil {
					return report, err
				}
			}
			after = records[len(records)-1].ID
		}
	}

	log.WithFields(logrus.Fields{
		"dry_run":   dryRun,
		"scanned":   report.Scanned,
		"rewritten": report.Rewritten,
		"invalid":   report.Invalid,
	}).Info("перенормализация завершена")
	return report, nil
}

func (uc *RenormalizeUseCase) normalize(rec repository.RawRecord, report *RenormalizeReport, log *logrus.Entry) map[string]string {
	changed := map[string]string{}
	for _, section := range codec.Sections {
		raw, ok := rec.Fields[section.String()]
		if !ok {
			continue
		}
		enc := codec.Inspect(section, raw)
		report.count(section, enc)

		if enc == codec.EncodingInvalid {
			report.Invalid++
			log.WithFields(logrus.Fields{
				"kind":    rec.Kind,
				"id":      rec.ID,
				"section": section,
			}).Warn("секция не разбирается, оставлена без изменений")
			continue
		}
		if !enc.NeedsRewrite() {
			continue
		}

		value, err := codec.DecodeStrict(section, raw)
		if err != nil {
			continue
		}
		encoded, err := codec.Encode(section, value)
		if err != nil {
			log.WithError(err).WithField("section", section).Warn("не удалось закодировать секцию")
			continue
		}
		changed[section.String()] = encoded
	}
	return changed
}
