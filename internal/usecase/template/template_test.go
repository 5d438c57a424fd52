package template_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/codec"
	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/usecase/template"
)

func TestCreateTemplate(t *testing.T) {
	store := memory.NewStore()
	providerID := uuid.New()

	tmpl, err := template.NewCreateTemplateUseCase(store.Templates, store.Proposals).Execute(context.Background(), template.TemplateInput{
		ProviderID: providerID,
		Name:       " Web design ",
		Sections: map[codec.Section]any{
			codec.SectionDeliverables: []any{"Wireframes"},
			codec.SectionTermsAndConditions: map[string]any{
				"kind": "free_text",
				"text": "Net 30",
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Web design", tmpl.Name)
	got, err := template.NewGetTemplateUseCase(store.Templates).Execute(context.Background(), tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Wireframes"}, got.Document.Deliverables())
}

func TestCreateTemplate_RequiresName(t *testing.T) {
	store := memory.NewStore()

	_, err := template.NewCreateTemplateUseCase(store.Templates, store.Proposals).Execute(context.Background(), template.TemplateInput{
		ProviderID: uuid.New(),
		Name:       "   ",
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestCreateTemplate_FromProposalDropsClientSignature(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p, err := entity.NewProposal(uuid.New(), "Source", nil, time.Now())
	require.NoError(t, err)
	p.Document.SetProviderSignature("Alice")
	p.Document.SetClientSignature("Bob")
	initial, err := p.InitialVersion(entity.VersionReasonCreate)
	require.NoError(t, err)
	require.NoError(t, store.Proposals.Create(ctx, p, initial))

	tmpl, err := template.NewCreateTemplateUseCase(store.Templates, store.Proposals).Execute(ctx, template.TemplateInput{
		ProviderID:     p.ProviderID,
		Name:           "Saved",
		FromProposalID: &p.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, "Alice", tmpl.Document.Signature().Provider)
	assert.Empty(t, tmpl.Document.Signature().Client)

	_, err = template.NewCreateTemplateUseCase(store.Templates, store.Proposals).Execute(ctx, template.TemplateInput{
		ProviderID:     uuid.New(),
		Name:           "Foreign",
		FromProposalID: &p.ID,
	})
	assert.True(t, apperror.IsForbidden(err))
}

func TestUpdateAndDeleteTemplate_CheckOwner(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	owner := uuid.New()
	tmpl, err := template.NewCreateTemplateUseCase(store.Templates, store.Proposals).Execute(ctx, template.TemplateInput{
		ProviderID: owner,
		Name:       "Base",
	})
	require.NoError(t, err)

	_, err = template.NewUpdateTemplateUseCase(store.Templates).Execute(ctx, tmpl.ID, template.TemplateInput{
		ProviderID: uuid.New(),
		Name:       "Stolen",
	})
	assert.True(t, apperror.IsForbidden(err))

	updated, err := template.NewUpdateTemplateUseCase(store.Templates).Execute(ctx, tmpl.ID, template.TemplateInput{
		ProviderID: owner,
		Name:       "Renamed",
		Sections:   map[codec.Section]any{codec.SectionScopeOfWork: "<p>Scope</p>"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "<p>Scope</p>", updated.Document.ScopeOfWork())

	list, err := template.NewListTemplatesUseCase(store.Templates).Execute(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.True(t, apperror.IsForbidden(template.NewDeleteTemplateUseCase(store.Templates).Execute(ctx, tmpl.ID, uuid.New())))
	require.NoError(t, template.NewDeleteTemplateUseCase(store.Templates).Execute(ctx, tmpl.ID, owner))
	_, err = template.NewGetTemplateUseCase(store.Templates).Execute(ctx, tmpl.ID)
	assert.True(t, apperror.IsNotFound(err))
}
