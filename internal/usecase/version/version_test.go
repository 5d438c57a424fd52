package version_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/usecase/version"
)

func TestMain(m *testing.M) {
	logger.Silence()
	os.Exit(m.Run())
}

// seed создаёт предложение и сохраняет по версии на каждый набор результатов.
func seed(t *testing.T, store *memory.Store, deliverables ...[]string) *entity.Proposal {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	p, err := entity.NewProposal(uuid.New(), "Audit", nil, now)
	require.NoError(t, err)
	initial, err := p.InitialVersion(entity.VersionReasonCreate)
	require.NoError(t, err)
	require.NoError(t, store.Proposals.Create(ctx, p, initial))

	for _, items := range deliverables {
		doc := p.Document.Clone()
		require.NoError(t, doc.SetDeliverables(items))
		require.NoError(t, p.ReplaceDocument(doc, now))
		v, err := p.Snapshot(entity.VersionReasonSave, now)
		require.NoError(t, err)
		require.NoError(t, store.Proposals.SaveDocument(ctx, p, v))
	}
	return p
}

func TestListVersions_OldestFirst(t *testing.T) {
	store := memory.NewStore()
	p := seed(t, store, []string{"A"}, []string{"A", "B"})

	versions, err := version.NewListVersionsUseCase(store.Proposals, store.Versions).Execute(context.Background(), p.ID)

	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, v := range versions {
		assert.Equal(t, i+1, v.VersionNumber)
	}
	assert.Equal(t, []string{"A", "B"}, versions[2].Content.Deliverables())
}

func TestListVersions_UnknownProposal(t *testing.T) {
	store := memory.NewStore()

	_, err := version.NewListVersionsUseCase(store.Proposals, store.Versions).Execute(context.Background(), uuid.New())

	assert.True(t, apperror.IsNotFound(err))
}

func TestRestoreVersion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := seed(t, store, []string{"A"}, []string{"A", "B"})
	versions, err := store.Versions.ListByProposal(ctx, p.ID)
	require.NoError(t, err)
	target := versions[1]

	restored, snap, err := version.NewRestoreVersionUseCase(store.Proposals, store.Versions).Execute(ctx, p.ID, target.ID)

	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, restored.Document.Deliverables())
	assert.Equal(t, 4, restored.CurrentVersion)
	assert.Equal(t, entity.VersionReasonRestore, snap.Reason)
	require.NotNil(t, snap.RestoredFrom)
	assert.Equal(t, target.ID, *snap.RestoredFrom)
	assert.Equal(t, target.ContentHash, snap.ContentHash)

	all, err := store.Versions.ListByProposal(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestRestoreVersion_ForeignVersion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := seed(t, store)
	other := seed(t, store, []string{"X"})
	foreign, err := store.Versions.ListByProposal(ctx, other.ID)
	require.NoError(t, err)

	_, _, err = version.NewRestoreVersionUseCase(store.Proposals, store.Versions).Execute(ctx, p.ID, foreign[1].ID)

	assert.True(t, apperror.HasCode(err, apperror.ErrCodeVersionNotFound))
}

func TestRestoreVersion_UnknownVersion(t *testing.T) {
	store := memory.NewStore()
	p := seed(t, store)

	_, _, err := version.NewRestoreVersionUseCase(store.Proposals, store.Versions).Execute(context.Background(), p.ID, uuid.New())

	assert.True(t, apperror.HasCode(err, apperror.ErrCodeVersionNotFound))
}

func TestRestoreVersion_LockedProposal(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := seed(t, store, []string{"A"})
	versions, err := store.Versions.ListByProposal(ctx, p.ID)
	require.NoError(t, err)

	p.ClientID, p.ProjectID = uuid.New(), uuid.New()
	require.NoError(t, store.Proposals.UpdateDetails(ctx, p))
	require.NoError(t, p.Send(time.Now(), "https://proposals.test/review/x"))
	require.NoError(t, store.Proposals.UpdateStatus(ctx, p, valueobject.ProposalStatusDraft))
	require.NoError(t, p.Reject(time.Now()))
	require.NoError(t, store.Proposals.UpdateStatus(ctx, p, valueobject.ProposalStatusSent))

	_, _, err = version.NewRestoreVersionUseCase(store.Proposals, store.Versions).Execute(ctx, p.ID, versions[0].ID)

	assert.True(t, apperror.HasCode(err, apperror.ErrCodeLocked))
}

func TestRestoreVersion_DropsSignatureGivenForOtherTerms(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := seed(t, store, []string{"A"}, []string{"A", "B"})
	versions, err := store.Versions.ListByProposal(ctx, p.ID)
	require.NoError(t, err)

	p.ClientID, p.ProjectID = uuid.New(), uuid.New()
	require.NoError(t, store.Proposals.UpdateDetails(ctx, p))
	require.NoError(t, p.Send(time.Now(), "https://proposals.test/review/x"))
	require.NoError(t, store.Proposals.UpdateStatus(ctx, p, valueobject.ProposalStatusDraft))
	require.NoError(t, p.CaptureClientSignature("Jane Doe", time.Now()))
	require.NoError(t, store.Proposals.UpdateSignature(ctx, p))

	restored, _, err := version.NewRestoreVersionUseCase(store.Proposals, store.Versions).Execute(ctx, p.ID, versions[1].ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, restored.Document.Deliverables())
	assert.Empty(t, restored.Document.Signature().Client)
	assert.True(t, apperror.HasCode(restored.Accept(time.Now()), apperror.ErrCodeMissingSignature))
}
