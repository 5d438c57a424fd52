package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-backend/internal/interface/http/dto"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
	"github.com/ignatzorin/proposal-backend/internal/usecase/version"
)

type VersionHandler struct {
	get     *proposal.GetProposalUseCase
	list    *version.ListVersionsUseCase
	restore *version.RestoreVersionUseCase
}

func NewVersionHandler(get *proposal.GetProposalUseCase, list *version.ListVersionsUseCase, restore *version.RestoreVersionUseCase) *VersionHandler {
	return &VersionHandler{get: get, list: list, restore: restore}
}

func (h *VersionHandler) ListVersions(c *gin.Context) {
	p, ok := ownedProposal(c, h.get)
	if !ok {
		return
	}

	versions, err := h.list.Execute(c.Request.Context(), p.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToVersionResponses(versions))
}

// RestoreVersion возвращает документ к снимку и добавляет новую версию.
func (h *VersionHandler) RestoreVersion(c *gin.Context) {
	p, ok := ownedProposal(c, h.get)
	if !ok {
		return
	}
	versionID, ok := parseIDParam(c, "versionId", "некорректный ID версии")
	if !ok {
		return
	}

	restored, v, err := h.restore.Execute(c.Request.Context(), p.ID, versionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.SaveDocumentResponse{
		Proposal: dto.ToProposalResponse(restored, true),
		Version:  dto.ToVersionResponse(v),
	})
}
