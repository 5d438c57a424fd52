package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/document"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/validation"
)

const copySuffix = " (Copy)"

// Proposal: агрегат предложения. Владеет ровно одним текущим документом.
// Нулевые ClientID и ProjectID означают «не указан».
type Proposal struct {
	ID             uuid.UUID
	ProviderID     uuid.UUID
	ClientID       uuid.UUID
	ProjectID      uuid.UUID
	Title          string
	Status         valueobject.ProposalStatus
	Document       *document.Document
	ShareLink      string
	SentAt         *time.Time
	AcceptedAt     *time.Time
	RejectedAt     *time.Time
	CurrentVersion int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewProposal создаёт черновик. doc может быть nil, тогда все секции пустые.
func NewProposal(providerID uuid.UUID, title string, doc *document.Document, now time.Time) (*Proposal, error) {
	title = strings.TrimSpace(title)
	if err := validation.ValidateProposalTitle(title); err != nil {
		return nil, apperror.Validation("title", err.Error())
	}
	if doc == nil {
		doc = document.New()
	} else {
		doc = doc.Clone()
	}

	return &Proposal{
		ID:             uuid.New(),
		ProviderID:     providerID,
		Title:          title,
		Status:         valueobject.ProposalStatusDraft,
		Document:       doc,
		CurrentVersion: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (p *Proposal) IsOwnedBy(userID uuid.UUID) bool {
	return p.ProviderID == userID
}

// IsLocked: принятое или отклонённое предложение больше не редактируется.
func (p *Proposal) IsLocked() bool {
	return p.Status.IsTerminal()
}

func (p *Proposal) ensureEditable() error {
	if p.IsLocked() {
		return apperror.Locked(p.Status.String())
	}
	return nil
}

// UpdateDetails меняет реквизиты предложения. Пустые значения допустимы в
// черновике, их наличие проверяется при отправке.
func (p *Proposal) UpdateDetails(title string, clientID, projectID uuid.UUID, now time.Time) error {
	if err := p.ensureEditable(); err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if err := validation.ValidateProposalTitle(title); err != nil {
		return apperror.Validation("title", err.Error())
	}
	p.Title = title
	p.ClientID = clientID
	p.ProjectID = projectID
	p.UpdatedAt = now
	return nil
}

// MissingForSend перечисляет все поля, без которых предложение нельзя отправить.
func (p *Proposal) MissingForSend() []string {
	var missing []string
	if strings.TrimSpace(p.Title) == "" {
		missing = append(missing, "title")
	}
	if p.ClientID == uuid.Nil {
		missing = append(missing, "client_id")
	}
	if p.ProjectID == uuid.Nil {
		missing = append(missing, "project_id")
	}
	return missing
}

// Send переводит предложение в sent. Повторная отправка обновляет sentAt и
// оставляет прежнюю ссылку.
func (p *Proposal) Send(now time.Time, link string) error {
	if !p.Status.CanTransitionTo(valueobject.ProposalStatusSent) {
		return apperror.InvalidTransition(p.Status.String(), valueobject.ProposalStatusSent.String())
	}
	if missing := p.MissingForSend(); len(missing) > 0 {
		return apperror.IncompleteProposal(missing...)
	}

	p.Status = valueobject.ProposalStatusSent
	p.SentAt = &now
	if p.ShareLink == "" {
		p.ShareLink = link
	}
	p.UpdatedAt = now
	return nil
}

// CaptureClientSignature записывает имя клиента в подпись. Статус не меняется.
func (p *Proposal) CaptureClientSignature(name string, now time.Time) error {
	if p.Status != valueobject.ProposalStatusSent {
		return apperror.NotSignable(p.Status.String())
	}
	name = strings.TrimSpace(name)
	if err := validation.ValidateSignatureName(name); err != nil {
		return apperror.InvalidSignature(err.Error())
	}

	p.Document.SetClientSignature(name)
	p.UpdatedAt = now
	return nil
}

func (p *Proposal) Accept(now time.Time) error {
	if p.Status != valueobject.ProposalStatusSent {
		return apperror.NotSignable(p.Status.String())
	}
	if !p.Document.Signature().IsSignedByClient() {
		return apperror.MissingSignature()
	}

	p.Status = valueobject.ProposalStatusAccepted
	p.AcceptedAt = &now
	p.UpdatedAt = now
	return nil
}

func (p *Proposal) Reject(now time.Time) error {
	if p.Status != valueobject.ProposalStatusSent {
		return apperror.InvalidTransition(p.Status.String(), valueobject.ProposalStatusRejected.String())
	}

	p.Status = valueobject.ProposalStatusRejected
	p.RejectedAt = &now
	p.UpdatedAt = now
	return nil
}

// Duplicate возвращает новый черновик с копией содержимого. Подпись клиента,
// даты отправки и принятия и ссылка не переносятся.
func (p *Proposal) Duplicate(now time.Time) *Proposal {
	doc := p.Document.Clone()
	doc.SetClientSignature("")

	return &Proposal{
		ID:             uuid.New(),
		ProviderID:     p.ProviderID,
		ClientID:       p.ClientID,
		ProjectID:      p.ProjectID,
		Title:          p.Title + copySuffix,
		Status:         valueobject.ProposalStatusDraft,
		Document:       doc,
		CurrentVersion: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ReplaceDocument заменяет содержимое при сохранении. Клиентская часть
// подписи сохранением не задаётся: она переносится, пока условия совпадают
// с подписанными, и сбрасывается при любом их изменении.
func (p *Proposal) ReplaceDocument(doc *document.Document, now time.Time) error {
	if err := p.ensureEditable(); err != nil {
		return err
	}
	next := doc.Clone()
	next.SetClientSignature("")
	if client := p.Document.Signature().Client; client != "" {
		same, err := sameTerms(p.Document, next)
		if err != nil {
			return err
		}
		if same {
			next.SetClientSignature(client)
		}
	}
	p.Document = next
	p.UpdatedAt = now
	return nil
}

// sameTerms сравнивает документы без учёта подписи клиента.
func sameTerms(a, b *document.Document) (bool, error) {
	ha, err := termsHash(a)
	if err != nil {
		return false, err
	}
	hb, err := termsHash(b)
	if err != nil {
		return false, err
	}
	return ha == hb, nil
}

func termsHash(d *document.Document) (string, error) {
	cp := d.Clone()
	cp.SetClientSignature("")
	return cp.ContentHash()
}

// Snapshot увеличивает CurrentVersion и возвращает версию с копией текущего
// документа. Сохраняется вместе с документом в одной транзакции.
func (p *Proposal) Snapshot(reason VersionReason, now time.Time) (*Version, error) {
	content := p.Document.Clone()
	hash, err := content.ContentHash()
	if err != nil {
		return nil, err
	}
	p.CurrentVersion++

	return &Version{
		ID:            uuid.New(),
		ProposalID:    p.ID,
		VersionNumber: p.CurrentVersion,
		Content:       content,
		ContentHash:   hash,
		Reason:        reason,
		CreatedAt:     now,
	}, nil
}

// InitialVersion строит версию 1, записываемую вместе с созданием предложения.
func (p *Proposal) InitialVersion(reason VersionReason) (*Version, error) {
	content := p.Document.Clone()
	hash, err := content.ContentHash()
	if err != nil {
		return nil, err
	}
	return &Version{
		ID:            uuid.New(),
		ProposalID:    p.ID,
		VersionNumber: p.CurrentVersion,
		Content:       content,
		ContentHash:   hash,
		Reason:        reason,
		CreatedAt:     p.CreatedAt,
	}, nil
}

// RestoreFrom заменяет текущий документ содержимым версии целиком, включая
// её подпись клиента, и сразу фиксирует восстановление новой версией.
func (p *Proposal) RestoreFrom(v *Version, now time.Time) (*Version, error) {
	if v == nil || v.ProposalID != p.ID {
		id := "<nil>"
		if v != nil {
			id = v.ID.String()
		}
		return nil, apperror.VersionNotFound(id)
	}
	if err := p.ensureEditable(); err != nil {
		return nil, err
	}

	p.Document = v.Content.Clone()
	p.UpdatedAt = now

	snap, err := p.Snapshot(VersionReasonRestore, now)
	if err != nil {
		return nil, err
	}
	restoredFrom := v.ID
	snap.RestoredFrom = &restoredFrom
	return snap, nil
}
