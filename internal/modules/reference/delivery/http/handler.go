package handler

import (
	"net/http"

	referenceDto "anoa.com/alumnihub/internal/modules/reference/dto"
	reference "anoa.com/alumnihub/internal/modules/reference/service"
	"anoa.com/alumnihub/pkg/response"
	"anoa.com/alumnihub/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ReferenceHandler struct {
	service reference.ReferenceService
}

func NewReferenceHandler(service reference.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{service: service}
}

func (h *ReferenceHandler) GetDepartments(c *gin.Context) {
	var query referenceDto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, validator.Translate(err))
		return
	}

	departments := h.service.ListDepartments(c.Request.Context(), query.Search)
	c.JSON(http.StatusOK, referenceDto.DepartmentListResponse{Error: false, Departments: departments})
}

func (h *ReferenceHandler) GetDormitories(c *gin.Context) {
	var query referenceDto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, validator.Translate(err))
		return
	}

	dormitories := h.service.ListDormitories(c.Request.Context(), query.Search)
	c.JSON(http.StatusOK, referenceDto.DormitoryListResponse{Error: false, Dormitories: dormitories})
}
