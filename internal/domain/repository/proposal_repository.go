package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

type ProposalRepository interface {
	// Create сохраняет предложение и его первую версию в одной транзакции.
	Create(ctx context.Context, proposal *entity.Proposal, initial *entity.Version) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error)
	List(ctx context.Context, filter ProposalFilter) ([]*entity.Proposal, int, error)
	// Delete удаляет предложение вместе со всеми версиями.
	Delete(ctx context.Context, id uuid.UUID) error

	UpdateDetails(ctx context.Context, proposal *entity.Proposal) error
	// SaveDocument записывает документ целиком и добавляет версию атомарно.
	// Запись выполняется, только если в хранилище current_version равен
	// version.VersionNumber-1, иначе возвращается VERSION_CONFLICT.
	SaveDocument(ctx context.Context, proposal *entity.Proposal, version *entity.Version) error
	// UpdateStatus записывает статус, даты и ссылку, если текущий статус в
	// хранилище равен from.
	UpdateStatus(ctx context.Context, proposal *entity.Proposal, from valueobject.ProposalStatus) error
	// UpdateSignature пишет только секцию signature и не затрагивает
	// параллельные правки остальных секций.
	UpdateSignature(ctx context.Context, proposal *entity.Proposal) error
}

type ProposalFilter struct {
	ProviderID uuid.UUID
	Status     valueobject.ProposalStatus
	ClientID   uuid.UUID
	ProjectID  uuid.UUID
	Limit      int
	Offset     int
}

type VersionRepository interface {
	// ListByProposal возвращает версии от старых к новым.
	ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*entity.Version, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Version, error)
}

type TemplateRepository interface {
	Create(ctx context.Context, template *entity.ProposalTemplate) error
	Update(ctx context.Context, template *entity.ProposalTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ProposalTemplate, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*entity.ProposalTemplate, error)
}
