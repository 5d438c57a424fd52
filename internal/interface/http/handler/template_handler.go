package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/dto"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/usecase/template"
)

type TemplateUseCases struct {
	Create *template.CreateTemplateUseCase
	Update *template.UpdateTemplateUseCase
	Get    *template.GetTemplateUseCase
	List   *template.ListTemplatesUseCase
	Delete *template.DeleteTemplateUseCase
}

// TemplateHandler обслуживает шаблоны предложений исполнителя.
type TemplateHandler struct {
	uc TemplateUseCases
}

func NewTemplateHandler(uc TemplateUseCases) *TemplateHandler {
	return &TemplateHandler{uc: uc}
}

func bindTemplate(c *gin.Context) (template.TemplateInput, bool) {
	var req dto.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return template.TemplateInput{}, false
	}
	sections, err := dto.ParseSections(req.Sections)
	if err != nil {
		response.Error(c, err)
		return template.TemplateInput{}, false
	}
	return template.TemplateInput{
		Name:           req.Name,
		Description:    req.Description,
		Sections:       sections,
		FromProposalID: req.FromProposalID,
	}, true
}

func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	input, ok := bindTemplate(c)
	if !ok {
		return
	}
	input.ProviderID = userID

	created, err := h.uc.Create.Execute(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToTemplateResponse(created))
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	templates, err := h.uc.List.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTemplateResponses(templates))
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	t, ok := h.ownedTemplate(c)
	if !ok {
		return
	}
	response.Success(c, dto.ToTemplateResponse(t))
}

func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	templateID, ok := parseIDParam(c, "id", "некорректный ID шаблона")
	if !ok {
		return
	}
	input, ok := bindTemplate(c)
	if !ok {
		return
	}
	input.ProviderID = userID

	updated, err := h.uc.Update.Execute(c.Request.Context(), templateID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTemplateResponse(updated))
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	templateID, ok := parseIDParam(c, "id", "некорректный ID шаблона")
	if !ok {
		return
	}

	if err := h.uc.Delete.Execute(c.Request.Context(), templateID, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

func (h *TemplateHandler) ownedTemplate(c *gin.Context) (*entity.ProposalTemplate, bool) {
	userID, ok := requireUser(c)
	if !ok {
		return nil, false
	}
	templateID, ok := parseIDParam(c, "id", "некорректный ID шаблона")
	if !ok {
		return nil, false
	}

	t, err := h.uc.Get.Execute(c.Request.Context(), templateID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if !t.IsOwnedBy(userID) {
		response.Error(c, apperror.ErrForbidden)
		return nil, false
	}
	return t, true
}
