package entity_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/domain/document"
	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

var now = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func readyProposal(t *testing.T) *entity.Proposal {
	t.Helper()
	p, err := entity.NewProposal(uuid.New(), "Website redesign", nil, now)
	require.NoError(t, err)
	require.NoError(t, p.UpdateDetails(p.Title, uuid.New(), uuid.New(), now))
	return p
}

func sentProposal(t *testing.T) *entity.Proposal {
	t.Helper()
	p := readyProposal(t)
	require.NoError(t, p.Send(now, "https://app.example.com/review/tok"))
	return p
}

func TestNewProposal(t *testing.T) {
	p, err := entity.NewProposal(uuid.New(), "  Logo  ", nil, now)

	require.NoError(t, err)
	assert.Equal(t, "Logo", p.Title)
	assert.Equal(t, valueobject.ProposalStatusDraft, p.Status)
	assert.Equal(t, 1, p.CurrentVersion)
	assert.NotNil(t, p.Document)
}

func TestSend_MissingClientID(t *testing.T) {
	p, err := entity.NewProposal(uuid.New(), "Website", nil, now)
	require.NoError(t, err)
	p.ProjectID = uuid.New()

	err = p.Send(now, "link")

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeIncomplete))
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []string{"client_id"}, appErr.Fields)
	assert.Equal(t, valueobject.ProposalStatusDraft, p.Status)
	assert.Nil(t, p.SentAt)
}

func TestSend_ListsEveryMissingField(t *testing.T) {
	p, err := entity.NewProposal(uuid.New(), "", nil, now)
	require.NoError(t, err)

	err = p.Send(now, "link")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []string{"title", "client_id", "project_id"}, appErr.Fields)
}

func TestSend_ResendKeepsLink(t *testing.T) {
	p := sentProposal(t)
	later := now.Add(time.Hour)

	require.NoError(t, p.Send(later, "https://other"))

	assert.Equal(t, "https://app.example.com/review/tok", p.ShareLink)
	assert.Equal(t, later, *p.SentAt)
}

func TestCaptureClientSignature_Blank(t *testing.T) {
	p := sentProposal(t)

	err := p.CaptureClientSignature("  ", now)

	assert.True(t, apperror.HasCode(err, apperror.ErrCodeInvalidSignature))
	assert.Equal(t, "", p.Document.Signature().Client)
}

func TestCaptureClientSignature_RequiresSent(t *testing.T) {
	p := readyProposal(t)

	err := p.CaptureClientSignature("Jane Doe", now)

	assert.True(t, apperror.HasCode(err, apperror.ErrCodeNotSignable))
}

func TestAccept_AfterSignature(t *testing.T) {
	p := sentProposal(t)
	require.NoError(t, p.CaptureClientSignature(" Jane Doe ", now))
	assert.Equal(t, valueobject.ProposalStatusSent, p.Status, "подпись сама не меняет статус")

	require.NoError(t, p.Accept(now))

	assert.Equal(t, valueobject.ProposalStatusAccepted, p.Status)
	require.NotNil(t, p.AcceptedAt)
	assert.Equal(t, "Jane Doe", p.Document.Signature().Client)
}

func TestAccept_FailsWithoutClientSignatureInEveryState(t *testing.T) {
	draft := readyProposal(t)
	sent := sentProposal(t)
	rejected := sentProposal(t)
	require.NoError(t, rejected.Reject(now))

	assert.True(t, apperror.HasCode(draft.Accept(now), apperror.ErrCodeNotSignable))
	assert.True(t, apperror.HasCode(sent.Accept(now), apperror.ErrCodeMissingSignature))
	assert.True(t, apperror.HasCode(rejected.Accept(now), apperror.ErrCodeNotSignable))
	assert.Equal(t, valueobject.ProposalStatusSent, sent.Status)
}

func TestTerminalStatesHaveNoTransitions(t *testing.T) {
	accepted := sentProposal(t)
	require.NoError(t, accepted.CaptureClientSignature("Jane", now))
	require.NoError(t, accepted.Accept(now))
	rejected := sentProposal(t)
	require.NoError(t, rejected.Reject(now))

	for _, p := range []*entity.Proposal{accepted, rejected} {
		status := p.Status
		assert.Error(t, p.Send(now, "link"))
		assert.Error(t, p.Accept(now))
		assert.Error(t, p.Reject(now))
		assert.Equal(t, status, p.Status)
		assert.True(t, apperror.HasCode(p.ReplaceDocument(document.New(), now), apperror.ErrCodeLocked))
	}
}

func TestReject_RequiresSent(t *testing.T) {
	p := readyProposal(t)

	err := p.Reject(now)

	assert.True(t, apperror.HasCode(err, apperror.ErrCodeInvalidTransition))
}

func TestDuplicate(t *testing.T) {
	p := sentProposal(t)
	require.NoError(t, p.Document.SetDeliverables([]string{"A"}))
	require.NoError(t, p.CaptureClientSignature("Jane", now))
	p.Document.SetProviderSignature("John")

	cp := p.Duplicate(now)

	assert.NotEqual(t, p.ID, cp.ID)
	assert.Equal(t, "Website redesign (Copy)", cp.Title)
	assert.Equal(t, valueobject.ProposalStatusDraft, cp.Status)
	assert.Nil(t, cp.SentAt)
	assert.Nil(t, cp.AcceptedAt)
	assert.Empty(t, cp.ShareLink)
	assert.Equal(t, 1, cp.CurrentVersion)
	assert.Equal(t, []string{"A"}, cp.Document.Deliverables())
	assert.Equal(t, valueobject.Signature{Provider: "John"}, cp.Document.Signature())

	require.NoError(t, cp.Document.SetDeliverables([]string{"B"}))
	assert.Equal(t, []string{"A"}, p.Document.Deliverables())
}

func TestReplaceDocument_ChangedTermsDropClientSignature(t *testing.T) {
	p := sentProposal(t)
	require.NoError(t, p.CaptureClientSignature("Jane Doe", now))

	next := p.Document.Clone()
	require.NoError(t, next.SetPricing(valueobject.FlatFeePricing(valueobject.FlatFee{Amount: 99999})))
	require.NoError(t, p.ReplaceDocument(next, now))

	assert.Empty(t, p.Document.Signature().Client)
	err := p.Accept(now)
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeMissingSignature))
	assert.Equal(t, valueobject.ProposalStatusSent, p.Status)
}

func TestReplaceDocument_SameTermsKeepClientSignature(t *testing.T) {
	p := sentProposal(t)
	require.NoError(t, p.CaptureClientSignature("Jane", now))

	// Подпись клиента из тела сохранения игнорируется.
	next := p.Document.Clone()
	next.SetClientSignature("Mallory")
	require.NoError(t, p.ReplaceDocument(next, now))

	assert.Equal(t, "Jane", p.Document.Signature().Client)
	require.NoError(t, p.Accept(now))
}

func TestReplaceDocument_CannotForgeClientSignature(t *testing.T) {
	p := sentProposal(t)

	next := p.Document.Clone()
	next.SetSignature(valueobject.Signature{Provider: "John", Client: "Mallory"})
	require.NoError(t, p.ReplaceDocument(next, now))

	assert.Equal(t, valueobject.Signature{Provider: "John"}, p.Document.Signature())
}

func TestSnapshot_IncrementsVersion(t *testing.T) {
	p := readyProposal(t)

	v2, err := p.Snapshot(entity.VersionReasonSave, now)
	require.NoError(t, err)
	v3, err := p.Snapshot(entity.VersionReasonSave, now)
	require.NoError(t, err)

	assert.Equal(t, 2, v2.VersionNumber)
	assert.Equal(t, 3, v3.VersionNumber)
	assert.Equal(t, 3, p.CurrentVersion)
	assert.Equal(t, v2.ContentHash, v3.ContentHash)
}

func TestRestoreFrom(t *testing.T) {
	p := readyProposal(t)
	require.NoError(t, p.Document.SetDeliverables([]string{"A", "B"}))
	saved, err := p.Snapshot(entity.VersionReasonSave, now)
	require.NoError(t, err)

	// Несохранённая правка.
	require.NoError(t, p.Document.SetDeliverables([]string{"C"}))

	restored, err := p.RestoreFrom(saved, now.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, p.Document.Deliverables())
	assert.Equal(t, 3, p.CurrentVersion, "восстановление не уменьшает номер версии")
	assert.Equal(t, entity.VersionReasonRestore, restored.Reason)
	require.NotNil(t, restored.RestoredFrom)
	assert.Equal(t, saved.ID, *restored.RestoredFrom)
	assert.Equal(t, now.Add(time.Minute), p.UpdatedAt)

	require.NoError(t, p.Document.SetDeliverables([]string{"D"}))
	assert.Equal(t, []string{"A", "B"}, saved.Content.Deliverables(), "версия неизменяема")
}

func TestRestoreFrom_TakesVersionSignature(t *testing.T) {
	p := sentProposal(t)
	unsigned, err := p.Snapshot(entity.VersionReasonSave, now)
	require.NoError(t, err)
	require.NoError(t, p.CaptureClientSignature("Jane Doe", now))

	_, err = p.RestoreFrom(unsigned, now)
	require.NoError(t, err)

	assert.Empty(t, p.Document.Signature().Client)
	assert.True(t, apperror.HasCode(p.Accept(now), apperror.ErrCodeMissingSignature))
}

func TestRestoreFrom_ForeignVersion(t *testing.T) {
	p := readyProposal(t)
	other := readyProposal(t)
	v, err := other.Snapshot(entity.VersionReasonSave, now)
	require.NoError(t, err)

	_, err = p.RestoreFrom(v, now)

	assert.True(t, apperror.HasCode(err, apperror.ErrCodeVersionNotFound))
	assert.Equal(t, 1, p.CurrentVersion)
}
