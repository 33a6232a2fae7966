package reference

import (
	"context"
	"strings"

	"anoa.com/alumnihub/internal/modules/reference/dto"
	"anoa.com/alumnihub/internal/modules/reference/repository"
	"anoa.com/alumnihub/pkg/logger"
)

type ReferenceService interface {
	ListDepartments(ctx context.Context, filter string) []dto.ReferenceResponse
	ListDormitories(ctx context.Context, filter string) []dto.ReferenceResponse
}

type referenceService struct {
	repo repository.ReferenceRepository
}

func NewReferenceService(repo repository.ReferenceRepository) ReferenceService {
	return &referenceService{repo: repo}
}

func (s *referenceService) ListDepartments(ctx context.Context, filter string) []dto.ReferenceResponse {
	items, err := s.repo.FindDepartments(ctx, strings.TrimSpace(filter))
	if err != nil {
		logger.WithError(err).Error("failed to list departments")
		return []dto.ReferenceResponse{}
	}
	return dto.NewDepartmentResponses(items)
}

func (s *referenceService) ListDormitories(ctx context.Context, filter string) []dto.ReferenceResponse {
	items, err := s.repo.FindDormitories(ctx, strings.TrimSpace(filter))
	if err != nil {
		logger.WithError(err).Error("failed to list dormitories")
		return []dto.ReferenceResponse{}
	}
	return dto.NewDormitoryResponses(items)
}
