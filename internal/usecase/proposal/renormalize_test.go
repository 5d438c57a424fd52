package proposal_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/codec"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
)

func TestRenormalize_RewritesLegacySections(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.create(t, false)

	require.NoError(t, f.store.Raw.RewriteFields(ctx, repository.RecordProposal, p.ID, map[string]string{
		"pricing":      `"{\"amount\":\"1500\"}"`,
		"deliverables": `"[\"A\",\"B\"]"`,
		"timeline":     `{"startDate":"2024-01-01","endDate":"2024-02-01"}`,
	}))

	dry, err := proposal.NewRenormalizeUseCase(f.store.Raw, 10).Execute(ctx, true)
	require.NoError(t, err)
	assert.True(t, dry.DryRun)
	assert.Equal(t, 1, dry.Rewritten)
	assert.Equal(t, 1, dry.Sections[codec.SectionPricing][codec.EncodingDoubleEncoded])
	assert.Equal(t, 1, dry.Sections[codec.SectionTimeline][codec.EncodingLegacy])

	records, err := f.store.Raw.ScanRaw(ctx, repository.RecordProposal, uuid.Nil, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, `"{\"amount\":\"1500\"}"`, records[0].Fields["pricing"], "пробный прогон ничего не пишет")

	report, err := proposal.NewRenormalizeUseCase(f.store.Raw, 10).Execute(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rewritten)

	records, err = f.store.Raw.ScanRaw(ctx, repository.RecordProposal, uuid.Nil, 10)
	require.NoError(t, err)
	for _, section := range []codec.Section{codec.SectionPricing, codec.SectionDeliverables, codec.SectionTimeline} {
		raw := records[0].Fields[section.String()]
		assert.Equal(t, codec.EncodingCanonical, codec.Inspect(section, raw), section)
		assert.NoError(t, codec.Verify(section, raw))
	}

	got, err := f.store.Proposals.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, got.Document.Pricing().Total())
	assert.Equal(t, []string{"A", "B"}, got.Document.Deliverables())

	again, err := proposal.NewRenormalizeUseCase(f.store.Raw, 10).Execute(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, again.Rewritten, "повторный прогон ничего не меняет")
}

func TestRenormalize_LeavesInvalidSections(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.create(t, false)
	require.NoError(t, f.store.Raw.RewriteFields(ctx, repository.RecordProposal, p.ID, map[string]string{
		"pricing": `{"amount":-5}`,
	}))

	report, err := proposal.NewRenormalizeUseCase(f.store.Raw, 1).Execute(ctx, false)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Invalid)
	records, err := f.store.Raw.ScanRaw(ctx, repository.RecordProposal, uuid.Nil, 10)
	require.NoError(t, err)
	assert.Equal(t, `{"amount":-5}`, records[0].Fields["pricing"])
}
