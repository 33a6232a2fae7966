package dto

import "anoa.com/alumnihub/internal/entity"

type ListQuery struct {
	Search string `form:"q" binding:"omitempty,max=100"`
}

type ReferenceResponse struct {
	ID          uint   `json:"id"`
	Description string `json:"description"`
}

type DepartmentListResponse struct {
	Error       bool                `json:"error"`
	Departments []ReferenceResponse `json:"departments"`
}

type DormitoryListResponse struct {
	Error       bool                `json:"error"`
	Dormitories []ReferenceResponse `json:"dormitories"`
}

func NewDepartmentResponses(items []*entity.Department) []ReferenceResponse {
	out := make([]ReferenceResponse, 0, len(items))
	for _, d := range items {
		out = append(out, ReferenceResponse{ID: d.ID, Description: d.Description})
	}
	return out
}

func NewDormitoryResponses(items []*entity.Dormitory) []ReferenceResponse {
	out := make([]ReferenceResponse, 0, len(items))
	for _, d := range items {
		out = append(out, ReferenceResponse{ID: d.ID, Description: d.Description})
	}
	return out
}
