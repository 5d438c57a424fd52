package proposal

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/document"
	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/metrics"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type CreateProposalInput struct {
	ProviderID uuid.UUID
	Title      string
	ClientID   uuid.UUID
	ProjectID  uuid.UUID
	// TemplateID задаёт необязательный шаблон, с копии которого начинается документ.
	TemplateID *uuid.UUID
}

type CreateProposalUseCase struct {
	proposalRepo repository.ProposalRepository
	templateRepo repository.TemplateRepository
}

func NewCreateProposalUseCase(proposalRepo repository.ProposalRepository, templateRepo repository.TemplateRepository) *CreateProposalUseCase {
	return &CreateProposalUseCase{
		proposalRepo: proposalRepo,
		templateRepo: templateRepo,
	}
}

func (uc *CreateProposalUseCase) Execute(ctx context.Context, input CreateProposalInput) (*entity.Proposal, error) {
	var doc *document.Document
	if input.TemplateID != nil {
		tmpl, err := uc.templateRepo.FindByID(ctx, *input.TemplateID)
		if err != nil {
			return nil, err
		}
		if !tmpl.IsOwnedBy(input.ProviderID) {
			return nil, apperror.ErrForbidden
		}
		doc = tmpl.Document
	}

	ts := now()
	proposal, err := entity.NewProposal(input.ProviderID, input.Title, doc, ts)
	if err != nil {
		return nil, err
	}
	if err := proposal.UpdateDetails(proposal.Title, input.ClientID, input.ProjectID, ts); err != nil {
		return nil, err
	}

	initial, err := proposal.InitialVersion(entity.VersionReasonCreate)
	if err != nil {
		return nil, err
	}
	if err := uc.proposalRepo.Create(ctx, proposal, initial); err != nil {
		return nil, err
	}
	metrics.RecordVersion(initial.Reason.String())

	return proposal, nil
}
