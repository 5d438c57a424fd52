package template

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/codec"
	"github.com/ignatzorin/proposal-backend/internal/domain/document"
	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/validation"
)

type TemplateInput struct {
	ProviderID  uuid.UUID
	Name        string
	Description string
	// Sections: содержимое шаблона в формате хранения или как разобранный JSON.
	Sections map[codec.Section]any
	// FromProposalID: взять содержимое из существующего предложения.
	// Sections применяются поверх него.
	FromProposalID *uuid.UUID
}

func validateInput(input TemplateInput) error {
	if err := validation.ValidateTemplateName(input.Name); err != nil {
		return apperror.Validation("name", err.Error())
	}
	if err := validation.ValidateTemplateDescription(input.Description); err != nil {
		return apperror.Validation("description", err.Error())
	}
	return nil
}

func applySections(doc *document.Document, sections map[codec.Section]any) error {
	for _, section := range codec.Sections {
		raw, ok := sections[section]
		if !ok {
			continue
		}
		if err := doc.SetSection(section, raw); err != nil {
			return err
		}
	}
	return nil
}

type CreateTemplateUseCase struct {
	templateRepo repository.TemplateRepository
	proposalRepo repository.ProposalRepository
}

func NewCreateTemplateUseCase(templateRepo repository.TemplateRepository, proposalRepo repository.ProposalRepository) *CreateTemplateUseCase {
	return &CreateTemplateUseCase{
		templateRepo: templateRepo,
		proposalRepo: proposalRepo,
	}
}

func (uc *CreateTemplateUseCase) Execute(ctx context.Context, input TemplateInput) (*entity.ProposalTemplate, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	doc := document.New()
	if input.FromProposalID != nil {
		source, err := uc.proposalRepo.FindByID(ctx, *input.FromProposalID)
		if err != nil {
			return nil, err
		}
		if !source.IsOwnedBy(input.ProviderID) {
			return nil, apperror.ErrForbidden
		}
		doc = source.Document.Clone()
	}
	if err := applySections(doc, input.Sections); err != nil {
		return nil, err
	}

	tmpl, err := entity.NewProposalTemplate(input.ProviderID, input.Name, input.Description, doc, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := uc.templateRepo.Create(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

type UpdateTemplateUseCase struct {
	templateRepo repository.TemplateRepository
}

func NewUpdateTemplateUseCase(templateRepo repository.TemplateRepository) *UpdateTemplateUseCase {
	return &UpdateTemplateUseCase{templateRepo: templateRepo}
}

func (uc *UpdateTemplateUseCase) Execute(ctx context.Context, templateID uuid.UUID, input TemplateInput) (*entity.ProposalTemplate, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	tmpl, err := uc.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !tmpl.IsOwnedBy(input.ProviderID) {
		return nil, apperror.ErrForbidden
	}

	doc := tmpl.Document.Clone()
	if err := applySections(doc, input.Sections); err != nil {
		return nil, err
	}
	if err := tmpl.Update(input.Name, input.Description, doc, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.templateRepo.Update(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

type GetTemplateUseCase struct {
	templateRepo repository.TemplateRepository
}

func NewGetTemplateUseCase(templateRepo repository.TemplateRepository) *GetTemplateUseCase {
	return &GetTemplateUseCase{templateRepo: templateRepo}
}

func (uc *GetTemplateUseCase) Execute(ctx context.Context, templateID uuid.UUID) (*entity.ProposalTemplate, error) {
	return uc.templateRepo.FindByID(ctx, templateID)
}

type ListTemplatesUseCase struct {
	templateRepo repository.TemplateRepository
}

func NewListTemplatesUseCase(templateRepo repository.TemplateRepository) *ListTemplatesUseCase {
	return &ListTemplatesUseCase{templateRepo: templateRepo}
}

func (uc *ListTemplatesUseCase) Execute(ctx context.Context, providerID uuid.UUID) ([]*entity.ProposalTemplate, error) {
	return uc.templateRepo.ListByProvider(ctx, providerID)
}

type DeleteTemplateUseCase struct {
	templateRepo repository.TemplateRepository
}

func NewDeleteTemplateUseCase(templateRepo repository.TemplateRepository) *DeleteTemplateUseCase {
	return &DeleteTemplateUseCase{templateRepo: templateRepo}
}

func (uc *DeleteTemplateUseCase) Execute(ctx context.Context, templateID, providerID uuid.UUID) error {
	tmpl, err := uc.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		return err
	}
	if !tmpl.IsOwnedBy(providerID) {
		return apperror.ErrForbidden
	}
	return uc.templateRepo.Delete(ctx, templateID)
}
