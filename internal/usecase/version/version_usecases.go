package version

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/metrics"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type ListVersionsUseCase struct {
	proposalRepo repository.ProposalRepository
	versionRepo  repository.VersionRepository
}

func NewListVersionsUseCase(proposalRepo repository.ProposalRepository, versionRepo repository.VersionRepository) *ListVersionsUseCase {
	return &ListVersionsUseCase{
		proposalRepo: proposalRepo,
		versionRepo:  versionRepo,
	}
}

// Execute возвращает историю от старых версий к новым.
func (uc *ListVersionsUseCase) Execute(ctx context.Context, proposalID uuid.UUID) ([]*entity.Version, error) {
	if _, err := uc.proposalRepo.FindByID(ctx, proposalID); err != nil {
		return nil, err
	}
	return uc.versionRepo.ListByProposal(ctx, proposalID)
}

// RestoreVersionUseCase возвращает документ к сохранённой версии. Само
// восстановление тоже попадает в историю отдельной версией.
type RestoreVersionUseCase struct {
	proposalRepo repository.ProposalRepository
	versionRepo  repository.VersionRepository
}

func NewRestoreVersionUseCase(proposalRepo repository.ProposalRepository, versionRepo repository.VersionRepository) *RestoreVersionUseCase {
	return &RestoreVersionUseCase{
		proposalRepo: proposalRepo,
		versionRepo:  versionRepo,
	}
}

func (uc *RestoreVersionUseCase) Execute(ctx context.Context, proposalID, versionID uuid.UUID) (*entity.Proposal, *entity.Version, error) {
	proposal, err := uc.proposalRepo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, nil, err
	}

	source, err := uc.versionRepo.FindByID(ctx, versionID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.VersionNotFound(versionID.String())
		}
		return nil, nil, err
	}

	restored, err := proposal.RestoreFrom(source, time.Now().UTC())
	if err != nil {
		return nil, nil, err
	}
	if err := uc.proposalRepo.SaveDocument(ctx, proposal, restored); err != nil {
		return nil, nil, err
	}
	metrics.RecordVersion(restored.Reason.String())

	return proposal, restored, nil
}
