package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/config"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/cache"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/handler"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/middleware"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/router"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/projection"
	"github.com/ignatzorin/proposal-backend/internal/service"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
	"github.com/ignatzorin/proposal-backend/internal/usecase/template"
	"github.com/ignatzorin/proposal-backend/internal/usecase/version"
)

const shareBaseURL = "https://app.test"

func TestMain(m *testing.M) {
	logger.Silence()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type harness struct {
	engine  *gin.Engine
	tokens  *service.TokenManager
	store   *memory.Store
	reviews *cache.MemoryCache
}

func newHarness(t *testing.T, reviewLimit int64) *harness {
	t.Helper()
	store := memory.NewStore()
	tokens := service.NewTokenManager(strings.Repeat("a", 32), strings.Repeat("b", 32), time.Hour, shareBaseURL)
	reviews := cache.NewMemoryCache(0)
	t.Cleanup(reviews.Close)

	get := proposal.NewGetProposalUseCase(store.Proposals)
	lifecycle := projection.Lifecycle{
		Get:    get,
		Sign:   proposal.NewSignProposalUseCase(store.Proposals, nil),
		Accept: proposal.NewAcceptProposalUseCase(store.Proposals, nil),
		Reject: proposal.NewRejectProposalUseCase(store.Proposals, nil),
	}
	registry, err := projection.DefaultRegistry(projection.TemplateJSON)
	require.NoError(t, err)
	limitStore, err := middleware.NewRateLimitStore(nil)
	require.NoError(t, err)

	handlers := router.Handlers{
		Health: handler.NewHealthHandler(nil),
		Proposals: handler.NewProposalHandler(handler.ProposalUseCases{
			Create:        proposal.NewCreateProposalUseCase(store.Proposals, store.Templates),
			Get:           get,
			List:          proposal.NewListProposalsUseCase(store.Proposals),
			UpdateDetails: proposal.NewUpdateDetailsUseCase(store.Proposals),
			SaveDocument:  proposal.NewSaveDocumentUseCase(store.Proposals),
			Delete:        proposal.NewDeleteProposalUseCase(store.Proposals),
			Send:          proposal.NewSendProposalUseCase(store.Proposals, tokens, nil),
			Duplicate:     proposal.NewDuplicateProposalUseCase(store.Proposals),
		}, reviews),
		Versions: handler.NewVersionHandler(get,
			version.NewListVersionsUseCase(store.Proposals, store.Versions),
			version.NewRestoreVersionUseCase(store.Proposals, store.Versions),
		),
		Templates: handler.NewTemplateHandler(handler.TemplateUseCases{
			Create: template.NewCreateTemplateUseCase(store.Templates, store.Proposals),
			Update: template.NewUpdateTemplateUseCase(store.Templates),
			Get:    template.NewGetTemplateUseCase(store.Templates),
			List:   template.NewListTemplatesUseCase(store.Templates),
			Delete: template.NewDeleteTemplateUseCase(store.Templates),
		}),
		Reviews: handler.NewReviewHandler(tokens, get, lifecycle, registry, reviews, time.Minute),
	}
	cfg := &config.Config{Env: "test", RateLimitLimit: reviewLimit, RateLimitPeriod: time.Minute}

	return &harness{
		engine:  router.SetupRouter(cfg, handlers, tokens, limitStore),
		tokens:  tokens,
		store:   store,
		reviews: reviews,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code   string   `json:"code"`
		Fields []string `json:"fields"`
	} `json:"error"`
}

func (h *harness) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := h.tokens.IssueAccess(userID, "freelancer")
	require.NoError(t, err)
	return token
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && env.Data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

type proposalBody struct {
	ID             uuid.UUID                  `json:"id"`
	Status         string                     `json:"status"`
	ShareLink      string                     `json:"share_link"`
	CurrentVersion int                        `json:"current_version"`
	Document       map[string]json.RawMessage `json:"document"`
}

func (h *harness) createProposal(t *testing.T, token string) proposalBody {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/proposals", token, map[string]any{
		"title":      "Website redesign",
		"client_id":  uuid.New(),
		"project_id": uuid.New(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p proposalBody
	decode(t, rec, &p)
	return p
}

func TestProposalLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t, 100)
	token := h.token(t, uuid.New())
	p := h.createProposal(t, token)
	assert.Equal(t, "draft", p.Status)
	assert.Len(t, p.Document, 8)

	rec := h.do(t, http.MethodPut, "/api/proposals/"+p.ID.String()+"/document", token, map[string]any{
		"sections": map[string]any{
			"pricing":      map[string]any{"amount": "1500", "currency": "eur"},
			"deliverables": `["Wireframes","Mockups"]`,
		},
		"base_version": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var saved struct {
		Proposal proposalBody `json:"proposal"`
		Version  struct {
			VersionNumber int    `json:"version_number"`
			Reason        string `json:"reason"`
		} `json:"version"`
	}
	decode(t, rec, &saved)
	assert.Equal(t, 2, saved.Version.VersionNumber)
	assert.Equal(t, "save", saved.Version.Reason)
	assert.JSONEq(t, `{"kind":"flat_fee","amount":1500,"currency":"EUR","type":"fixed"}`, string(saved.Proposal.Document["pricing"]))
	assert.JSONEq(t, `["Wireframes","Mockups"]`, string(saved.Proposal.Document["deliverables"]))

	rec = h.do(t, http.MethodPost, "/api/proposals/"+p.ID.String()+"/send", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sent proposalBody
	decode(t, rec, &sent)
	assert.Equal(t, "sent", sent.Status)
	require.True(t, strings.HasPrefix(sent.ShareLink, shareBaseURL+"/review/"))
	share := strings.TrimPrefix(sent.ShareLink, shareBaseURL+"/review/")

	rec = h.do(t, http.MethodGet, "/api/review/"+share, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, rec.Body.String(), `"can_sign":true`)

	rec = h.do(t, http.MethodPost, "/api/review/"+share+"/accept", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "MISSING_SIGNATURE", decode(t, rec, nil).Error.Code)

	rec = h.do(t, http.MethodPost, "/api/review/"+share+"/sign", "", map[string]string{"name": " Jane Client "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var state struct {
		Signature struct {
			Client    string `json:"client"`
			CanAccept bool   `json:"can_accept"`
		} `json:"signature"`
	}
	decode(t, rec, &state)
	assert.Equal(t, "Jane Client", state.Signature.Client)
	assert.True(t, state.Signature.CanAccept)

	rec = h.do(t, http.MethodPost, "/api/review/"+share+"/accept", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodPut, "/api/proposals/"+p.ID.String()+"/document", token, map[string]any{
		"sections": map[string]any{"scope_of_work": "changed"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "PROPOSAL_LOCKED", decode(t, rec, nil).Error.Code)
}

func TestProposals_RequireAuth(t *testing.T) {
	h := newHarness(t, 100)

	rec := h.do(t, http.MethodGet, "/api/proposals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/proposals", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, rec, nil).Error.Code)
}

func TestProposals_ForeignProviderIsForbidden(t *testing.T) {
	h := newHarness(t, 100)
	p := h.createProposal(t, h.token(t, uuid.New()))
	other := h.token(t, uuid.New())

	rec := h.do(t, http.MethodGet, "/api/proposals/"+p.ID.String(), other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/proposals/"+p.ID.String(), other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProposals_InvalidID(t *testing.T) {
	h := newHarness(t, 100)

	rec := h.do(t, http.MethodGet, "/api/proposals/not-a-uuid", h.token(t, uuid.New()), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveDocument_ReportsSection(t *testing.T) {
	h := newHarness(t, 100)
	token := h.token(t, uuid.New())
	p := h.createProposal(t, token)
	path := "/api/proposals/" + p.ID.String() + "/document"

	rec := h.do(t, http.MethodPut, path, token, map[string]any{
		"sections": map[string]any{"timeline": map[string]string{"start": "2024-02-01", "end": "2024-01-01"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec, nil)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, []string{"timeline"}, env.Error.Fields)

	rec = h.do(t, http.MethodPut, path, token, map[string]any{
		"sections": map[string]any{"budget": 1},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"budget"}, decode(t, rec, nil).Error.Fields)

	rec = h.do(t, http.MethodPut, path, token, map[string]any{
		"sections":     map[string]any{"scopeOfWork": "x"},
		"base_version": 7,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "VERSION_CONFLICT", decode(t, rec, nil).Error.Code)
}

func TestSend_IncompleteProposal(t *testing.T) {
	h := newHarness(t, 100)
	token := h.token(t, uuid.New())
	rec := h.do(t, http.MethodPost, "/api/proposals", token, map[string]any{})
	require.Equal(t, http.StatusCreated, rec.Code)
	var p proposalBody
	decode(t, rec, &p)

	rec = h.do(t, http.MethodPost, "/api/proposals/"+p.ID.String()+"/send", token, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decode(t, rec, nil)
	assert.Equal(t, "INCOMPLETE_PROPOSAL", env.Error.Code)
	assert.ElementsMatch(t, []string{"title", "client_id", "project_id"}, env.Error.Fields)
}

func TestVersions_ListAndRestore(t *testing.T) {
	h := newHarness(t, 100)
	token := h.token(t, uuid.New())
	p := h.createProposal(t, token)
	base := "/api/proposals/" + p.ID.String()
	rec := h.do(t, http.MethodPut, base+"/document", token, map[string]any{
		"sections": map[string]any{"scope_of_work": "Second draft"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, base+"/versions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var versions []struct {
		ID            uuid.UUID `json:"id"`
		VersionNumber int       `json:"version_number"`
	}
	decode(t, rec, &versions)
	require.Len(t, versions, 2)
	assert.Equal(t, 1, versions[0].VersionNumber)

	rec = h.do(t, http.MethodPost, base+"/versions/"+versions[0].ID.String()+"/restore", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var restored struct {
		Proposal proposalBody `json:"proposal"`
		Version  struct {
			VersionNumber int       `json:"version_number"`
			RestoredFrom  uuid.UUID `json:"restored_from"`
		} `json:"version"`
	}
	decode(t, rec, &restored)
	assert.Equal(t, 3, restored.Version.VersionNumber)
	assert.Equal(t, versions[0].ID, restored.Version.RestoredFrom)
	assert.JSONEq(t, `""`, string(restored.Proposal.Document["scope_of_work"]))

	rec = h.do(t, http.MethodPost, base+"/versions/"+uuid.NewString()+"/restore", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "VERSION_NOT_FOUND", decode(t, rec, nil).Error.Code)
}

func TestReview_TokenAndDraftChecks(t *testing.T) {
	h := newHarness(t, 100)
	p := h.createProposal(t, h.token(t, uuid.New()))

	rec := h.do(t, http.MethodGet, "/api/review/garbage", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	share, err := h.tokens.ShareToken(p.ID)
	require.NoError(t, err)
	rec = h.do(t, http.MethodGet, "/api/review/"+share, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "черновик по ссылке не открывается")
}

func TestReview_TemplatesAndCache(t *testing.T) {
	h := newHarness(t, 100)
	token := h.token(t, uuid.New())
	p := h.createProposal(t, token)
	rec := h.do(t, http.MethodPost, "/api/proposals/"+p.ID.String()+"/send", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	share, err := h.tokens.ShareToken(p.ID)
	require.NoError(t, err)

	rec = h.do(t, http.MethodGet, "/api/review/"+share+"?template=markdown", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "# Website redesign")

	rec = h.do(t, http.MethodGet, "/api/review/"+share+"?template=markdown", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, h.reviews.Len())

	rec = h.do(t, http.MethodGet, "/api/review/"+share+"?template=classic", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/api/review/`+share+`/sign"`)
	assert.Equal(t, 2, h.reviews.Len())

	rec = h.do(t, http.MethodGet, "/api/review/"+share+"?template=pdf", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/proposals/"+p.ID.String()+"/preview?template=classic", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `/sign"`)

	rec = h.do(t, http.MethodDelete, "/api/proposals/"+p.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, h.reviews.Len())
}

var formAction = regexp.MustCompile(`<form method="post" action="([^"]+)">(<input name="name"|<button type="submit">Принять)`)

// submitForm находит на странице форму действия и отправляет её так, как это
// сделал бы браузер: адрес разрешается относительно адреса страницы.
func (h *harness) submitForm(t *testing.T, pageURL, page, button string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var action string
	for _, m := range formAction.FindAllStringSubmatch(page, -1) {
		if strings.Contains(m[2], button) {
			action = m[1]
		}
	}
	require.NotEmpty(t, action, "на странице нет формы %q", button)

	base, err := url.Parse(pageURL)
	require.NoError(t, err)
	ref, err := url.Parse(html.UnescapeString(action))
	require.NoError(t, err)
	target := base.ResolveReference(ref)

	req := httptest.NewRequest(http.MethodPost, target.String(), strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

func TestReview_ClassicFormsDriveLifecycle(t *testing.T) {
	h := newHarness(t, 100)
	token := h.token(t, uuid.New())
	p := h.createProposal(t, token)
	rec := h.do(t, http.MethodPost, "/api/proposals/"+p.ID.String()+"/send", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	share, err := h.tokens.ShareToken(p.ID)
	require.NoError(t, err)
	pagePath := "/api/review/" + share
	pageURL := shareBaseURL + pagePath + "?template=classic"

	rec = h.do(t, http.MethodGet, pagePath+"?template=classic", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Принять", "до подписи принять нельзя")

	rec = h.submitForm(t, pageURL, rec.Body.String(), "name", url.Values{"name": {"Jane Doe"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, pagePath, rec.Header().Get("Location"))

	rec = h.do(t, http.MethodGet, pagePath+"?template=classic", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Клиент: Jane Doe")

	rec = h.submitForm(t, pageURL, rec.Body.String(), "Принять", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	stored, err := h.store.Proposals.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "accepted", stored.Status.String())
	assert.Equal(t, "Jane Doe", stored.Document.Signature().Client)
}

func TestReview_SignAcceptsJSONAndForm(t *testing.T) {
	h := newHarness(t, 100)
	token := h.token(t, uuid.New())
	p := h.createProposal(t, token)
	rec := h.do(t, http.MethodPost, "/api/proposals/"+p.ID.String()+"/send", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	share, err := h.tokens.ShareToken(p.ID)
	require.NoError(t, err)

	rec = h.do(t, http.MethodPost, "/api/review/"+share+"/sign", "", map[string]string{"name": "Jane Doe"})
	require.Equal(t, http.StatusOK, rec.Code)
	var state struct {
		Signature struct {
			Client string `json:"client"`
		} `json:"signature"`
	}
	decode(t, rec, &state)
	assert.Equal(t, "Jane Doe", state.Signature.Client)

	req := httptest.NewRequest(http.MethodPost, "/api/review/"+share+"/sign", strings.NewReader("name=+"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReview_RateLimited(t *testing.T) {
	h := newHarness(t, 2)

	for i := 0; i < 2; i++ {
		h.do(t, http.MethodGet, "/api/review/garbage", "", nil)
	}
	rec := h.do(t, http.MethodGet, "/api/review/garbage", "", nil)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestTemplatesOverHTTP(t *testing.T) {
	h := newHarness(t, 100)
	owner := uuid.New()
	token := h.token(t, owner)

	rec := h.do(t, http.MethodPost, "/api/proposal-templates", token, map[string]any{
		"name":     "Web project",
		"sections": map[string]any{"deliverables": []string{"Design"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tmpl struct {
		ID uuid.UUID `json:"id"`
	}
	decode(t, rec, &tmpl)

	rec = h.do(t, http.MethodPost, "/api/proposals", token, map[string]any{"title": "From template", "template_id": tmpl.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	var p proposalBody
	decode(t, rec, &p)
	assert.JSONEq(t, `["Design"]`, string(p.Document["deliverables"]))

	rec = h.do(t, http.MethodGet, "/api/proposal-templates/"+tmpl.ID.String(), h.token(t, uuid.New()), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodPut, "/api/proposal-templates/"+tmpl.ID.String(), token, map[string]any{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/proposal-templates", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []struct {
		Name string `json:"name"`
	}
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Renamed", list[0].Name)

	rec = h.do(t, http.MethodDelete, "/api/proposal-templates/"+tmpl.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t, 100)

	rec := h.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_request_duration_seconds")
}
