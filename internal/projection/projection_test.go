package projection_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/domain/document"
	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/projection"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
)

func TestMain(m *testing.M) {
	logger.Silence()
	os.Exit(m.Run())
}

type staticLinks struct{}

func (staticLinks) ShareLink(id uuid.UUID) (string, error) {
	return "https://proposals.test/review/" + id.String(), nil
}

func sentProposal(t *testing.T, store *memory.Store) *entity.Proposal {
	t.Helper()
	ctx := context.Background()
	p, err := proposal.NewCreateProposalUseCase(store.Proposals, store.Templates).Execute(ctx, proposal.CreateProposalInput{
		ProviderID: uuid.New(),
		Title:      "Landing page",
		ClientID:   uuid.New(),
		ProjectID:  uuid.New(),
	})
	require.NoError(t, err)
	p, err = proposal.NewSendProposalUseCase(store.Proposals, staticLinks{}, nil).Execute(ctx, p.ID)
	require.NoError(t, err)
	return p
}

func lifecycle(store *memory.Store) projection.Lifecycle {
	return projection.Lifecycle{
		Get:    proposal.NewGetProposalUseCase(store.Proposals),
		Sign:   proposal.NewSignProposalUseCase(store.Proposals, nil),
		Accept: proposal.NewAcceptProposalUseCase(store.Proposals, nil),
		Reject: proposal.NewRejectProposalUseCase(store.Proposals, nil),
	}
}

func TestSession_SignThenAccept(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	s := projection.NewSession(sentProposal(t, store), lifecycle(store))

	view := s.Projection()
	assert.True(t, view.Signature.CanSign)
	assert.False(t, view.Signature.CanAccept, "без подписи клиента принять нельзя")

	s.OnStartSign()
	s.OnChangeDraftSignature("  Jane Client ")
	assert.True(t, s.Projection().Signature.Signing)
	assert.Equal(t, "  Jane Client ", s.Projection().Signature.Draft)

	require.NoError(t, s.OnConfirmSign(ctx))
	view = s.Projection()
	assert.False(t, view.Signature.Signing)
	assert.Empty(t, view.Signature.Draft)
	assert.Equal(t, "Jane Client", view.Signature.Client)
	assert.True(t, view.Signature.CanAccept)

	require.NoError(t, s.OnAccept(ctx))
	view = s.Projection()
	assert.Equal(t, valueobject.ProposalStatusAccepted.String(), view.Proposal.Status)
	assert.False(t, view.Signature.CanSign)
	assert.NotNil(t, view.Proposal.AcceptedAt)
}

func TestSession_AcceptWithoutSignature(t *testing.T) {
	store := memory.NewStore()
	s := projection.NewSession(sentProposal(t, store), lifecycle(store))

	err := s.OnAccept(context.Background())

	assert.True(t, apperror.HasCode(err, apperror.ErrCodeMissingSignature))
	assert.Equal(t, valueobject.ProposalStatusSent, s.Proposal().Status)
}

func TestSession_BlankSignatureKeepsForm(t *testing.T) {
	store := memory.NewStore()
	s := projection.NewSession(sentProposal(t, store), lifecycle(store))
	s.OnStartSign()
	s.OnChangeDraftSignature("   ")

	err := s.OnConfirmSign(context.Background())

	assert.True(t, apperror.HasCode(err, apperror.ErrCodeInvalidSignature))
	assert.True(t, s.Projection().Signature.Signing)

	s.OnCancelSign()
	assert.False(t, s.Projection().Signature.Signing)
	assert.Empty(t, s.Projection().Signature.Draft)
}

func TestSession_ReloadsAfterConcurrentChange(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := sentProposal(t, store)
	s := projection.NewSession(p, lifecycle(store))

	_, err := proposal.NewRejectProposalUseCase(store.Proposals, nil).Execute(ctx, p.ID)
	require.NoError(t, err)

	s.OnChangeDraftSignature("Jane")
	err = s.OnConfirmSign(ctx)

	assert.True(t, apperror.HasCode(err, apperror.ErrCodeNotSignable))
	assert.Equal(t, valueobject.ProposalStatusRejected, s.Proposal().Status)
	assert.False(t, s.Projection().Signature.CanReject)
}

func TestPreview_IsReadOnly(t *testing.T) {
	store := memory.NewStore()
	view := projection.Preview(sentProposal(t, store))

	assert.False(t, view.Signature.CanSign)
	assert.False(t, view.Signature.CanAccept)
	err := view.Actions.OnAccept(context.Background())
	assert.True(t, apperror.IsForbidden(err))
}

func TestProjection_DocumentIsCopy(t *testing.T) {
	store := memory.NewStore()
	p := sentProposal(t, store)
	view := projection.Preview(p)

	doc, ok := view.Document.(*document.Document)
	require.True(t, ok)
	require.NoError(t, doc.SetDeliverables([]string{"changed"}))

	assert.Empty(t, p.Document.Deliverables())
}

func richProposal(t *testing.T) *entity.Proposal {
	t.Helper()
	doc := document.New()
	doc.SetScopeOfWork("<p>Build a <strong>landing</strong> page</p>")
	require.NoError(t, doc.SetDeliverables([]string{"Design", "Code"}))
	require.NoError(t, doc.SetPricing(valueobject.LineItemsPricing([]valueobject.LineItem{
		{Item: "Design", Amount: 500},
		{Item: "Code", Amount: 1000},
	})))
	doc.SetTermsAndConditions(valueobject.StructuredTermsOf(valueobject.StructuredTerms{GoverningLaw: "Delaware"}))
	doc.SetProviderSignature("Provider Inc")

	p, err := entity.NewProposal(uuid.New(), "Landing <b>page</b>", doc, time.Now())
	require.NoError(t, err)
	return p
}

func TestRegistry(t *testing.T) {
	r, err := projection.DefaultRegistry("")
	require.NoError(t, err)
	assert.Equal(t, projection.TemplateClassic, r.Default())
	assert.Equal(t, []string{"classic", "json", "markdown"}, r.Names())

	tmpl, err := r.Get(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, projection.TemplateJSON, tmpl.Name())

	_, err = r.Get("pdf")
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeBadRequest))

	_, err = projection.DefaultRegistry("pdf")
	assert.Error(t, err)
}

func TestJSONTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, projection.NewJSONTemplate().Render(&buf, projection.Preview(richProposal(t))))

	var out struct {
		Proposal struct {
			Title  string `json:"title"`
			Status string `json:"status"`
		} `json:"proposal"`
		Document map[string]json.RawMessage `json:"document"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "draft", out.Proposal.Status)
	assert.JSONEq(t, `["Design","Code"]`, string(out.Document["deliverables"]))
	assert.Contains(t, string(out.Document["pricing"]), `"kind":"line_items"`)
	assert.Len(t, out.Document, 8)
}

func TestMarkdownTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, projection.NewMarkdownTemplate().Render(&buf, projection.Preview(richProposal(t))))
	out := buf.String()

	assert.Contains(t, out, "Build a **landing** page")
	assert.Contains(t, out, "- Design\n- Code\n")
	assert.Contains(t, out, "| **Итого** | **1500.00** |")
	assert.Contains(t, out, "- **Применимое право:** Delaware")
	assert.Contains(t, out, "- Исполнитель: Provider Inc")
	assert.NotContains(t, out, "Количество правок")
}

func TestMarkdownTemplate_ConvertsFreeTextTerms(t *testing.T) {
	p := richProposal(t)
	p.Document.SetTermsAndConditions(valueobject.FreeTextTerms("<p>Payment within <em>30 days</em></p><ul><li>No refunds</li></ul>"))

	var buf bytes.Buffer
	require.NoError(t, projection.NewMarkdownTemplate().Render(&buf, projection.Preview(p)))
	out := buf.String()

	assert.Contains(t, out, "Payment within _30 days_")
	assert.Contains(t, out, "- No refunds")
	assert.NotContains(t, out, "<p>")
	assert.NotContains(t, out, "<em>")
}

func TestClassicTemplate_EscapesContent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, projection.NewClassicTemplate().Render(&buf, projection.Preview(richProposal(t))))
	out := buf.String()

	assert.Contains(t, out, "<h1>Landing &lt;b&gt;page&lt;/b&gt;</h1>")
	assert.Contains(t, out, "&lt;strong&gt;landing&lt;/strong&gt;")
	assert.Contains(t, out, "<td>1500.00</td>")
	assert.NotContains(t, out, "<form", "в предпросмотре форм действий нет")
}
