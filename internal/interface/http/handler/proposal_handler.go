package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/cache"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/dto"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
)

type ProposalUseCases struct {
	Create        *proposal.CreateProposalUseCase
	Get           *proposal.GetProposalUseCase
	List          *proposal.ListProposalsUseCase
	UpdateDetails *proposal.UpdateDetailsUseCase
	SaveDocument  *proposal.SaveDocumentUseCase
	Delete        *proposal.DeleteProposalUseCase
	Send          *proposal.SendProposalUseCase
	Duplicate     *proposal.DuplicateProposalUseCase
}

// ProposalHandler обслуживает предложения исполнителя.
type ProposalHandler struct {
	uc      ProposalUseCases
	reviews cache.ReviewCache
}

func NewProposalHandler(uc ProposalUseCases, reviews cache.ReviewCache) *ProposalHandler {
	return &ProposalHandler{uc: uc, reviews: reviews}
}

// ownedProposal загружает предложение и проверяет, что оно принадлежит
// текущему исполнителю. При ошибке ответ уже отправлен.
func ownedProposal(c *gin.Context, get *proposal.GetProposalUseCase) (*entity.Proposal, bool) {
	userID, ok := requireUser(c)
	if !ok {
		return nil, false
	}
	proposalID, ok := parseIDParam(c, "id", "некорректный ID предложения")
	if !ok {
		return nil, false
	}

	p, err := get.Execute(c.Request.Context(), proposalID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if !p.IsOwnedBy(userID) {
		response.Error(c, apperror.ErrForbidden)
		return nil, false
	}
	return p, true
}

func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	created, err := h.uc.Create.Execute(c.Request.Context(), proposal.CreateProposalInput{
		ProviderID: userID,
		Title:      req.Title,
		ClientID:   dto.IDOrNil(req.ClientID),
		ProjectID:  dto.IDOrNil(req.ProjectID),
		TemplateID: req.TemplateID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToProposalResponse(created, true))
}

func (h *ProposalHandler) ListProposals(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	filter := repository.ProposalFilter{
		ProviderID: userID,
		Limit:      parseIntQuery(c, "limit", 20),
		Offset:     parseIntQuery(c, "offset", 0),
	}
	if status := c.Query("status"); status != "" {
		s, err := valueobject.NewProposalStatus(status)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.Status = s
	}
	if filter.ClientID, ok = parseUUIDQuery(c, "client_id"); !ok {
		return
	}
	if filter.ProjectID, ok = parseUUIDQuery(c, "project_id"); !ok {
		return
	}

	proposals, total, err := h.uc.List.Execute(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToProposalResponses(proposals), total, filter.Limit, filter.Offset)
}

func (h *ProposalHandler) GetProposal(c *gin.Context) {
	p, ok := ownedProposal(c, h.uc.Get)
	if !ok {
		return
	}
	response.Success(c, dto.ToProposalResponse(p, true))
}

func (h *ProposalHandler) UpdateProposal(c *gin.Context) {
	p, ok := ownedProposal(c, h.uc.Get)
	if !ok {
		return
	}

	var req dto.UpdateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	updated, err := h.uc.UpdateDetails.Execute(c.Request.Context(), proposal.UpdateDetailsInput{
		ProposalID: p.ID,
		Title:      req.Title,
		ClientID:   dto.IDOrNil(req.ClientID),
		ProjectID:  dto.IDOrNil(req.ProjectID),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProposalResponse(updated, true))
}

func (h *ProposalHandler) SaveDocument(c *gin.Context) {
	p, ok := ownedProposal(c, h.uc.Get)
	if !ok {
		return
	}

	var req dto.SaveDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}
	sections, err := dto.ParseSections(req.Sections)
	if err != nil {
		response.Error(c, err)
		return
	}

	saved, version, err := h.uc.SaveDocument.Execute(c.Request.Context(), proposal.SaveDocumentInput{
		ProposalID:  p.ID,
		Sections:    sections,
		BaseVersion: req.BaseVersion,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.SaveDocumentResponse{
		Proposal: dto.ToProposalResponse(saved, true),
		Version:  dto.ToVersionResponse(version),
	})
}

func (h *ProposalHandler) DeleteProposal(c *gin.Context) {
	p, ok := ownedProposal(c, h.uc.Get)
	if !ok {
		return
	}

	if err := h.uc.Delete.Execute(c.Request.Context(), p.ID); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.reviews.InvalidateProposal(c.Request.Context(), p.ID); err != nil {
		logger.Component("http").WithError(err).WithField("proposal_id", p.ID).Warn("не удалось очистить кэш просмотра")
	}

	response.Success(c, gin.H{"deleted": true})
}

// SendProposal отправляет предложение и возвращает его со ссылкой для клиента.
func (h *ProposalHandler) SendProposal(c *gin.Context) {
	p, ok := ownedProposal(c, h.uc.Get)
	if !ok {
		return
	}

	sent, err := h.uc.Send.Execute(c.Request.Context(), p.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProposalResponse(sent, true))
}

func (h *ProposalHandler) DuplicateProposal(c *gin.Context) {
	p, ok := ownedProposal(c, h.uc.Get)
	if !ok {
		return
	}

	copied, err := h.uc.Duplicate.Execute(c.Request.Context(), p.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToProposalResponse(copied, true))
}
