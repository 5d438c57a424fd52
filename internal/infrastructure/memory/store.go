// Package memory хранит предложения в памяти процесса. Секции документа лежат
// в нём в том же закодированном виде, что и в PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/codec"
	"github.com/ignatzorin/proposal-backend/internal/domain/document"
	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type proposalRow struct {
	ID             uuid.UUID
	ProviderID     uuid.UUID
	ClientID       uuid.UUID
	ProjectID      uuid.UUID
	Title          string
	Status         string
	ShareLink      string
	SentAt         *time.Time
	AcceptedAt     *time.Time
	RejectedAt     *time.Time
	CurrentVersion int
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Fields         map[string]string
}

type versionRow struct {
	ID            uuid.UUID
	ProposalID    uuid.UUID
	VersionNumber int
	ContentHash   string
	Reason        string
	RestoredFrom  *uuid.UUID
	CreatedAt     time.Time
	Fields        map[string]string
}

type templateRow struct {
	ID          uuid.UUID
	ProviderID  uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Fields      map[string]string
}

// Store держит общие данные репозиториев. Один мьютекс на всё хранилище даёт
// атомарность записи документа вместе с версией.
type Store struct {
	mu            sync.Mutex
	proposalsByID map[uuid.UUID]proposalRow
	versionsByID  map[uuid.UUID]versionRow
	templatesByID map[uuid.UUID]templateRow

	Proposals *ProposalRepository
	Versions  *VersionRepository
	Templates *TemplateRepository
	Raw       *RawRepository
}

func NewStore() *Store {
	s := &Store{
		proposalsByID: map[uuid.UUID]proposalRow{},
		versionsByID:  map[uuid.UUID]versionRow{},
		templatesByID: map[uuid.UUID]templateRow{},
	}
	s.Proposals = &ProposalRepository{s: s}
	s.Versions = &VersionRepository{s: s}
	s.Templates = &TemplateRepository{s: s}
	s.Raw = &RawRepository{s: s}
	return s
}

var (
	_ repository.ProposalRepository    = (*ProposalRepository)(nil)
	_ repository.VersionRepository     = (*VersionRepository)(nil)
	_ repository.TemplateRepository    = (*TemplateRepository)(nil)
	_ repository.RawDocumentRepository = (*RawRepository)(nil)
)

// encode кодирует документ и проверяет каждую секцию перед записью.
func encode(doc *document.Document) (map[string]string, error) {
	fields, err := doc.Fields()
	if err != nil {
		return nil, err
	}
	for _, section := range codec.Sections {
		if err := codec.Verify(section, fields[section.String()]); err != nil {
			return nil, apperror.Persistence(err, "секция не прошла проверку перед записью")
		}
	}
	return fields, nil
}

func copyFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

type ProposalRepository struct {
	s *Store
}

func newProposalRow(p *entity.Proposal, fields map[string]string) proposalRow {
	return proposalRow{
		ID:             p.ID,
		ProviderID:     p.ProviderID,
		ClientID:       p.ClientID,
		ProjectID:      p.ProjectID,
		Title:          p.Title,
		Status:         p.Status.String(),
		ShareLink:      p.ShareLink,
		SentAt:         copyTime(p.SentAt),
		AcceptedAt:     copyTime(p.AcceptedAt),
		RejectedAt:     copyTime(p.RejectedAt),
		CurrentVersion: p.CurrentVersion,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Fields:         fields,
	}
}

func (row proposalRow) toEntity() *entity.Proposal {
	status, _ := valueobject.NewProposalStatus(row.Status)
	return &entity.Proposal{
		ID:             row.ID,
		ProviderID:     row.ProviderID,
		ClientID:       row.ClientID,
		ProjectID:      row.ProjectID,
		Title:          row.Title,
		Status:         status,
		Document:       document.FromFields(row.Fields),
		ShareLink:      row.ShareLink,
		SentAt:         copyTime(row.SentAt),
		AcceptedAt:     copyTime(row.AcceptedAt),
		RejectedAt:     copyTime(row.RejectedAt),
		CurrentVersion: row.CurrentVersion,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

func newVersionRow(v *entity.Version, fields map[string]string) versionRow {
	row := versionRow{
		ID:            v.ID,
		ProposalID:    v.ProposalID,
		VersionNumber: v.VersionNumber,
		ContentHash:   v.ContentHash,
		Reason:        v.Reason.String(),
		CreatedAt:     v.CreatedAt,
		Fields:        fields,
	}
	if v.RestoredFrom != nil {
		id := *v.RestoredFrom
		row.RestoredFrom = &id
	}
	return row
}

func (row versionRow) toEntity() *entity.Version {
	v := &entity.Version{
		ID:            row.ID,
		ProposalID:    row.ProposalID,
		VersionNumber: row.VersionNumber,
		Content:       document.FromFields(row.Fields),
		ContentHash:   row.ContentHash,
		Reason:        entity.VersionReason(row.Reason),
		CreatedAt:     row.CreatedAt,
	}
	if row.RestoredFrom != nil {
		id := *row.RestoredFrom
		v.RestoredFrom = &id
	}
	return v
}

func (r *ProposalRepository) Create(_ context.Context, p *entity.Proposal, initial *entity.Version) error {
	fields, err := encode(p.Document)
	if err != nil {
		return err
	}
	versionFields, err := encode(initial.Content)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.proposalsByID[p.ID]; ok {
		return apperror.New(apperror.ErrCodeConflict, "предложение уже существует")
	}
	r.s.proposalsByID[p.ID] = newProposalRow(p, fields)
	r.s.versionsByID[initial.ID] = newVersionRow(initial, versionFields)
	return nil
}

func (r *ProposalRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Proposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.proposalsByID[id]
	if !ok {
		return nil, apperror.ErrProposalNotFound
	}
	return row.toEntity(), nil
}

func (r *ProposalRepository) List(_ context.Context, filter repository.ProposalFilter) ([]*entity.Proposal, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := make([]proposalRow, 0, len(r.s.proposalsByID))
	for _, row := range r.s.proposalsByID {
		if filter.ProviderID != uuid.Nil && row.ProviderID != filter.ProviderID {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status.String() {
			continue
		}
		if filter.ClientID != uuid.Nil && row.ClientID != filter.ClientID {
			continue
		}
		if filter.ProjectID != uuid.Nil && row.ProjectID != filter.ProjectID {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID.String() < rows[j].ID.String()
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	total := len(rows)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}

	items := make([]*entity.Proposal, 0, end-start)
	for _, row := range rows[start:end] {
		items = append(items, row.toEntity())
	}
	return items, total, nil
}

func (r *ProposalRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.proposalsByID[id]; !ok {
		return apperror.ErrProposalNotFound
	}
	delete(r.s.proposalsByID, id)
	for vid, v := range r.s.versionsByID {
		if v.ProposalID == id {
			delete(r.s.versionsByID, vid)
		}
	}
	return nil
}

func (r *ProposalRepository) UpdateDetails(_ context.Context, p *entity.Proposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.proposalsByID[p.ID]
	if !ok {
		return apperror.ErrProposalNotFound
	}
	row.Title = p.Title
	row.ClientID = p.ClientID
	row.ProjectID = p.ProjectID
	row.UpdatedAt = p.UpdatedAt
	r.s.proposalsByID[p.ID] = row
	return nil
}

func (r *ProposalRepository) SaveDocument(_ context.Context, p *entity.Proposal, v *entity.Version) error {
	fields, err := encode(p.Document)
	if err != nil {
		return err
	}
	versionFields, err := encode(v.Content)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.proposalsByID[p.ID]
	if !ok {
		return apperror.ErrProposalNotFound
	}
	if row.CurrentVersion != v.VersionNumber-1 {
		return apperror.VersionConflict(v.VersionNumber-1, row.CurrentVersion)
	}
	row.Fields = fields
	row.CurrentVersion = v.VersionNumber
	row.UpdatedAt = p.UpdatedAt
	r.s.proposalsByID[p.ID] = row
	r.s.versionsByID[v.ID] = newVersionRow(v, versionFields)
	return nil
}

func (r *ProposalRepository) UpdateStatus(_ context.Context, p *entity.Proposal, from valueobject.ProposalStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.proposalsByID[p.ID]
	if !ok {
		return apperror.ErrProposalNotFound
	}
	if row.Status != from.String() {
		return apperror.New(apperror.ErrCodeConflict, fmt.Sprintf("статус предложения изменился: %s", row.Status))
	}
	row.Status = p.Status.String()
	row.ShareLink = p.ShareLink
	row.SentAt = copyTime(p.SentAt)
	row.AcceptedAt = copyTime(p.AcceptedAt)
	row.RejectedAt = copyTime(p.RejectedAt)
	row.UpdatedAt = p.UpdatedAt
	r.s.proposalsByID[p.ID] = row
	return nil
}

func (r *ProposalRepository) UpdateSignature(_ context.Context, p *entity.Proposal) error {
	encoded, err := codec.EncodeSignature(p.Document.Signature())
	if err != nil {
		return err
	}
	if err := codec.Verify(codec.SectionSignature, encoded); err != nil {
		return apperror.Persistence(err, "подпись не прошла проверку перед записью")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.proposalsByID[p.ID]
	if !ok {
		return apperror.ErrProposalNotFound
	}
	if row.Status != valueobject.ProposalStatusSent.String() {
		return apperror.NotSignable(row.Status)
	}
	row.Fields = copyFields(row.Fields)
	row.Fields[codec.SectionSignature.String()] = encoded
	row.UpdatedAt = p.UpdatedAt
	r.s.proposalsByID[p.ID] = row
	return nil
}

type VersionRepository struct {
	s *Store
}

func (r *VersionRepository) ListByProposal(_ context.Context, proposalID uuid.UUID) ([]*entity.Version, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]versionRow, 0)
	for _, row := range r.s.versionsByID {
		if row.ProposalID == proposalID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].VersionNumber < rows[j].VersionNumber })

	items := make([]*entity.Version, len(rows))
	for i, row := range rows {
		items[i] = row.toEntity()
	}
	return items, nil
}

func (r *VersionRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Version, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.versionsByID[id]
	if !ok {
		return nil, apperror.VersionNotFound(id.String())
	}
	return row.toEntity(), nil
}

type TemplateRepository struct {
	s *Store
}

func (r *TemplateRepository) put(t *entity.ProposalTemplate, mustExist bool) error {
	fields, err := encode(t.Document)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, exists := r.s.templatesByID[t.ID]
	if mustExist && !exists {
		return apperror.ErrTemplateNotFound
	}
	if !mustExist && exists {
		return apperror.New(apperror.ErrCodeConflict, "шаблон уже существует")
	}
	r.s.templatesByID[t.ID] = templateRow{
		ID:          t.ID,
		ProviderID:  t.ProviderID,
		Name:        t.Name,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Fields:      fields,
	}
	return nil
}

func (r *TemplateRepository) Create(_ context.Context, t *entity.ProposalTemplate) error {
	return r.put(t, false)
}

func (r *TemplateRepository) Update(_ context.Context, t *entity.ProposalTemplate) error {
	return r.put(t, true)
}

func (r *TemplateRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.templatesByID[id]; !ok {
		return apperror.ErrTemplateNotFound
	}
	delete(r.s.templatesByID, id)
	return nil
}

func (row templateRow) toEntity() *entity.ProposalTemplate {
	return &entity.ProposalTemplate{
		ID:          row.ID,
		ProviderID:  row.ProviderID,
		Name:        row.Name,
		Description: row.Description,
		Document:    document.FromFields(row.Fields),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (r *TemplateRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.ProposalTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.templatesByID[id]
	if !ok {
		return nil, apperror.ErrTemplateNotFound
	}
	return row.toEntity(), nil
}

func (r *TemplateRepository) ListByProvider(_ context.Context, providerID uuid.UUID) ([]*entity.ProposalTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]templateRow, 0)
	for _, row := range r.s.templatesByID {
		if row.ProviderID == providerID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })

	items := make([]*entity.ProposalTemplate, len(rows))
	for i, row := range rows {
		items[i] = row.toEntity()
	}
	return items, nil
}
