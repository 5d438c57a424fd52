package proposal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/metrics"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type SendProposalUseCase struct {
	proposalRepo repository.ProposalRepository
	links        LinkGenerator
	events       EventPublisher
}

func NewSendProposalUseCase(proposalRepo repository.ProposalRepository, links LinkGenerator, events EventPublisher) *SendProposalUseCase {
	return &SendProposalUseCase{
		proposalRepo: proposalRepo,
		links:        links,
		events:       publisherOrNop(events),
	}
}

// Execute отправляет предложение клиенту. Повторная отправка уже
// отправленного предложения обновляет время отправки.
func (uc *SendProposalUseCase) Execute(ctx context.Context, proposalID uuid.UUID) (*entity.Proposal, error) {
	proposal, err := uc.proposalRepo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	link := proposal.ShareLink
	if link == "" {
		link, err = uc.links.ShareLink(proposal.ID)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать ссылку для клиента")
		}
	}

	from := proposal.Status
	ts := now()
	if err := proposal.Send(ts, link); err != nil {
		return nil, err
	}
	if err := uc.proposalRepo.UpdateStatus(ctx, proposal, from); err != nil {
		return nil, err
	}
	metrics.RecordTransition(from.String(), proposal.Status.String())
	publish(ctx, uc.events, entity.NewProposalEvent(entity.EventProposalSent, proposal, ts))

	return proposal, nil
}

// SignProposalUseCase записывает подпись клиента. Статус остаётся sent.
type SignProposalUseCase struct {
	proposalRepo repository.ProposalRepository
	events       EventPublisher
}

func NewSignProposalUseCase(proposalRepo repository.ProposalRepository, events EventPublisher) *SignProposalUseCase {
	return &SignProposalUseCase{
		proposalRepo: proposalRepo,
		events:       publisherOrNop(events),
	}
}

func (uc *SignProposalUseCase) Execute(ctx context.Context, proposalID uuid.UUID, name string) (*entity.Proposal, error) {
	proposal, err := uc.proposalRepo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	ts := now()
	if err := proposal.CaptureClientSignature(name, ts); err != nil {
		return nil, err
	}
	if err := uc.proposalRepo.UpdateSignature(ctx, proposal); err != nil {
		return nil, err
	}
	publish(ctx, uc.events, entity.NewProposalEvent(entity.EventProposalSigned, proposal, ts))

	return proposal, nil
}

type AcceptProposalUseCase struct {
	proposalRepo repository.ProposalRepository
	events       EventPublisher
}

func NewAcceptProposalUseCase(proposalRepo repository.ProposalRepository, events EventPublisher) *AcceptProposalUseCase {
	return &AcceptProposalUseCase{
		proposalRepo: proposalRepo,
		events:       publisherOrNop(events),
	}
}

func (uc *AcceptProposalUseCase) Execute(ctx context.Context, proposalID uuid.UUID) (*entity.Proposal, error) {
	return transition(ctx, uc.proposalRepo, uc.events, proposalID, entity.EventProposalAccepted, (*entity.Proposal).Accept)
}

type RejectProposalUseCase struct {
	proposalRepo repository.ProposalRepository
	events       EventPublisher
}

func NewRejectProposalUseCase(proposalRepo repository.ProposalRepository, events EventPublisher) *RejectProposalUseCase {
	return &RejectProposalUseCase{
		proposalRepo: proposalRepo,
		events:       publisherOrNop(events),
	}
}

func (uc *RejectProposalUseCase) Execute(ctx context.Context, proposalID uuid.UUID) (*entity.Proposal, error) {
	return transition(ctx, uc.proposalRepo, uc.events, proposalID, entity.EventProposalRejected, (*entity.Proposal).Reject)
}

// transition применяет переход из sent и сохраняет его сравнением статуса,
// чтобы параллельные accept и reject не перезаписали друг друга.
func transition(
	ctx context.Context,
	repo repository.ProposalRepository,
	events EventPublisher,
	proposalID uuid.UUID,
	eventType entity.EventType,
	apply func(*entity.Proposal, time.Time) error,
) (*entity.Proposal, error) {
	proposal, err := repo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	from := proposal.Status
	ts := now()
	if err := apply(proposal, ts); err != nil {
		return nil, err
	}
	if err := repo.UpdateStatus(ctx, proposal, from); err != nil {
		return nil, err
	}
	metrics.RecordTransition(from.String(), proposal.Status.String())
	publish(ctx, events, entity.NewProposalEvent(eventType, proposal, ts))

	return proposal, nil
}

type DuplicateProposalUseCase struct {
	proposalRepo repository.ProposalRepository
}

func NewDuplicateProposalUseCase(proposalRepo repository.ProposalRepository) *DuplicateProposalUseCase {
	return &DuplicateProposalUseCase{proposalRepo: proposalRepo}
}

func (uc *DuplicateProposalUseCase) Execute(ctx context.Context, proposalID uuid.UUID) (*entity.Proposal, error) {
	source, err := uc.proposalRepo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	copied := source.Duplicate(now())
	initial, err := copied.InitialVersion(entity.VersionReasonDuplicate)
	if err != nil {
		return nil, err
	}
	if err := uc.proposalRepo.Create(ctx, copied, initial); err != nil {
		return nil, err
	}
	metrics.RecordVersion(initial.Reason.String())

	return copied, nil
}
