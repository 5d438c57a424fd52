package handler

import (
	"bytes"
	"context"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/cache"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/dto"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/projection"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
)

// ShareTokenParser достаёт ID предложения из токена ссылки для клиента.
type ShareTokenParser interface {
	ParseShareToken(token string) (uuid.UUID, error)
}

// ReviewHandler обслуживает страницу просмотра предложения клиентом
// и предпросмотр для исполнителя.
type ReviewHandler struct {
	tokens    ShareTokenParser
	get       *proposal.GetProposalUseCase
	lifecycle projection.Lifecycle
	templates *projection.Registry
	reviews   cache.ReviewCache
	cacheTTL  time.Duration
}

func NewReviewHandler(
	tokens ShareTokenParser,
	get *proposal.GetProposalUseCase,
	lifecycle projection.Lifecycle,
	templates *projection.Registry,
	reviews cache.ReviewCache,
	cacheTTL time.Duration,
) *ReviewHandler {
	return &ReviewHandler{
		tokens:    tokens,
		get:       get,
		lifecycle: lifecycle,
		templates: templates,
		reviews:   reviews,
		cacheTTL:  cacheTTL,
	}
}

type reviewState struct {
	Proposal  projection.ProposalView   `json:"proposal"`
	Signature projection.SignatureState `json:"signature"`
}

// sharedProposal загружает предложение по токену ссылки. Черновики клиенту
// не показываются.
func (h *ReviewHandler) sharedProposal(c *gin.Context) (*entity.Proposal, bool) {
	proposalID, err := h.tokens.ParseShareToken(c.Param("token"))
	if err != nil {
		response.Error(c, apperror.ErrInvalidShareLink)
		return nil, false
	}

	p, err := h.get.Execute(c.Request.Context(), proposalID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if p.Status == valueobject.ProposalStatusDraft {
		response.Error(c, apperror.ErrProposalNotFound)
		return nil, false
	}
	return p, true
}

func (h *ReviewHandler) Review(c *gin.Context) {
	p, ok := h.sharedProposal(c)
	if !ok {
		return
	}
	tmpl, err := h.templates.Get(c.Query("template"))
	if err != nil {
		response.Error(c, err)
		return
	}

	key := cache.ReviewKey(p.ID, p.CurrentVersion, p.UpdatedAt, p.Status.String(), tmpl.Name())
	// Путь страницы однозначно задан предложением: токен ссылки детерминирован.
	body, err := cache.GetOrRender(c.Request.Context(), h.reviews, key, h.cacheTTL, func() ([]byte, error) {
		view := projection.NewSession(p, h.lifecycle).Projection()
		view.ActionPath = c.Request.URL.Path
		return render(tmpl, view)
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Data(http.StatusOK, tmpl.ContentType(), body)
}

// Preview показывает исполнителю, как предложение увидит клиент.
func (h *ReviewHandler) Preview(c *gin.Context) {
	p, ok := ownedProposal(c, h.get)
	if !ok {
		return
	}
	tmpl, err := h.templates.Get(c.Query("template"))
	if err != nil {
		response.Error(c, err)
		return
	}

	body, err := render(tmpl, projection.Preview(p))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Data(http.StatusOK, tmpl.ContentType(), body)
}

func (h *ReviewHandler) Sign(c *gin.Context) {
	var req dto.SignRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	h.act(c, func(ctx context.Context, s *projection.Session) error {
		s.OnStartSign()
		s.OnChangeDraftSignature(req.Name)
		return s.OnConfirmSign(ctx)
	})
}

func (h *ReviewHandler) Accept(c *gin.Context) {
	h.act(c, func(ctx context.Context, s *projection.Session) error {
		return s.OnAccept(ctx)
	})
}

func (h *ReviewHandler) Reject(c *gin.Context) {
	h.act(c, func(ctx context.Context, s *projection.Session) error {
		return s.OnReject(ctx)
	})
}

func (h *ReviewHandler) act(c *gin.Context, action func(ctx context.Context, s *projection.Session) error) {
	p, ok := h.sharedProposal(c)
	if !ok {
		return
	}

	session := projection.NewSession(p, h.lifecycle)
	if err := action(c.Request.Context(), session); err != nil {
		response.Error(c, err)
		return
	}

	// Форма со страницы просмотра возвращает клиента обратно на страницу.
	if isFormPost(c) {
		c.Redirect(http.StatusSeeOther, path.Dir(c.Request.URL.Path))
		return
	}

	view := session.Projection()
	response.Success(c, reviewState{Proposal: view.Proposal, Signature: view.Signature})
}

func isFormPost(c *gin.Context) bool {
	switch c.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		return true
	}
	return false
}

func render(tmpl projection.Template, p projection.Projection) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Render(&buf, p); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось отобразить предложение")
	}
	return buf.Bytes(), nil
}
