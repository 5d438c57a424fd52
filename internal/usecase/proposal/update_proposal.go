package proposal

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/codec"
	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/metrics"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/validation"
)

type UpdateDetailsInput struct {
	ProposalID uuid.UUID
	Title      string
	ClientID   uuid.UUID
	ProjectID  uuid.UUID
}

type UpdateDetailsUseCase struct {
	proposalRepo repository.ProposalRepository
}

func NewUpdateDetailsUseCase(proposalRepo repository.ProposalRepository) *UpdateDetailsUseCase {
	return &UpdateDetailsUseCase{proposalRepo: proposalRepo}
}

func (uc *UpdateDetailsUseCase) Execute(ctx context.Context, input UpdateDetailsInput) (*entity.Proposal, error) {
	proposal, err := uc.proposalRepo.FindByID(ctx, input.ProposalID)
	if err != nil {
		return nil, err
	}
	if err := proposal.UpdateDetails(input.Title, input.ClientID, input.ProjectID, now()); err != nil {
		return nil, err
	}
	if err := uc.proposalRepo.UpdateDetails(ctx, proposal); err != nil {
		return nil, err
	}
	return proposal, nil
}

type SaveDocumentInput struct {
	ProposalID uuid.UUID
	// Sections: изменённые секции в формате хранения или как разобранный
	// JSON. Остальные секции сохраняются без изменений.
	Sections map[codec.Section]any
	// BaseVersion: версия, с которой начиналось редактирование. Если задана
	// и уже устарела, сохранение отклоняется.
	BaseVersion *int
}

// SaveDocumentUseCase сохраняет документ целиком и добавляет версию.
type SaveDocumentUseCase struct {
	proposalRepo repository.ProposalRepository
}

func NewSaveDocumentUseCase(proposalRepo repository.ProposalRepository) *SaveDocumentUseCase {
	return &SaveDocumentUseCase{proposalRepo: proposalRepo}
}

func (uc *SaveDocumentUseCase) Execute(ctx context.Context, input SaveDocumentInput) (*entity.Proposal, *entity.Version, error) {
	proposal, err := uc.proposalRepo.FindByID(ctx, input.ProposalID)
	if err != nil {
		return nil, nil, err
	}
	if proposal.IsLocked() {
		return nil, nil, apperror.Locked(proposal.Status.String())
	}
	if input.BaseVersion != nil && *input.BaseVersion != proposal.CurrentVersion {
		return nil, nil, apperror.VersionConflict(*input.BaseVersion, proposal.CurrentVersion)
	}

	doc := proposal.Document.Clone()
	for _, section := range codec.Sections {
		raw, ok := input.Sections[section]
		if !ok {
			continue
		}
		if section == codec.SectionSignature {
			// Клиентская часть подписи меняется только захватом подписи.
			sig, err := codec.DecodeSignatureStrict(raw)
			if err != nil {
				return nil, nil, apperror.Validation(section.String(), err.Error())
			}
			doc.SetProviderSignature(sig.Provider)
			continue
		}
		if err := doc.SetSection(section, raw); err != nil {
			return nil, nil, err
		}
	}

	if err := validation.ValidateScopeOfWork(doc.ScopeOfWork()); err != nil {
		return nil, nil, apperror.Validation(codec.SectionScopeOfWork.String(), err.Error())
	}
	if err := validation.ValidateDeliverables(doc.Deliverables()); err != nil {
		return nil, nil, apperror.Validation(codec.SectionDeliverables.String(), err.Error())
	}

	ts := now()
	if err := proposal.ReplaceDocument(doc, ts); err != nil {
		return nil, nil, err
	}
	version, err := proposal.Snapshot(entity.VersionReasonSave, ts)
	if err != nil {
		return nil, nil, err
	}
	if err := uc.proposalRepo.SaveDocument(ctx, proposal, version); err != nil {
		return nil, nil, err
	}
	metrics.RecordVersion(version.Reason.String())

	return proposal, version, nil
}

type DeleteProposalUseCase struct {
	proposalRepo repository.ProposalRepository
}

func NewDeleteProposalUseCase(proposalRepo repository.ProposalRepository) *DeleteProposalUseCase {
	return &DeleteProposalUseCase{proposalRepo: proposalRepo}
}

func (uc *DeleteProposalUseCase) Execute(ctx context.Context, proposalID uuid.UUID) error {
	return uc.proposalRepo.Delete(ctx, proposalID)
}
