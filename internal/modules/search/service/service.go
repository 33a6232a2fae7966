package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"anoa.com/alumnihub/internal/entity"
	"anoa.com/alumnihub/pkg/logger"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
)

const usersIndex = "users"

// UserIndex keeps the user directory searchable.
type UserIndex interface {
	IndexUser(ctx context.Context, user *entity.User) error
	SearchUsers(ctx context.Context, query string, limit int) ([]uuid.UUID, error)
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
}

// NewMeiliSearchService returns nil when host is empty so callers fall back
// to database search.
func NewMeiliSearchService(host, apiKey string) UserIndex {
	if host == "" {
		return nil
	}
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}

	s := &meiliSearchService{
		client: meilisearch.New(host, meilisearch.WithAPIKey(apiKey)),
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	searchable := []string{"name", "email", "profession", "skills", "interests", "department", "dormitory"}
	if _, err := s.client.Index(usersIndex).UpdateSearchableAttributes(&searchable); err != nil {
		logger.WithField("index", usersIndex).WithError(err).Warn("failed to update searchable attributes")
		return
	}
	logger.WithField("index", usersIndex).Info("meilisearch index initialized")
}

type meiliUserDoc struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Profession     string `json:"profession,omitempty"`
	Skills         string `json:"skills,omitempty"`
	Interests      string `json:"interests,omitempty"`
	Department     string `json:"department,omitempty"`
	Dormitory      string `json:"dormitory,omitempty"`
	GraduationYear int    `json:"graduation_year,omitempty"`
}

func newUserDoc(user *entity.User) meiliUserDoc {
	doc := meiliUserDoc{
		ID:    user.ID.String(),
		Name:  user.Name,
		Email: user.Email,
	}
	if d := user.Detail; d != nil {
		doc.Profession = getStringOrEmpty(d.Profession)
		doc.Skills = getStringOrEmpty(d.Skills)
		doc.Interests = getStringOrEmpty(d.Interests)
		if d.Department != nil {
			doc.Department = d.Department.Description
		}
		if d.Dormitory != nil {
			doc.Dormitory = d.Dormitory.Description
		}
		if d.GraduationYear != nil {
			doc.GraduationYear = *d.GraduationYear
		}
	}
	return doc
}

func (s *meiliSearchService) IndexUser(ctx context.Context, user *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	task, err := s.client.Index(usersIndex).AddDocuments([]meiliUserDoc{newUserDoc(user)}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index user %s: %w", user.ID, err)
	}
	logger.WithFields(map[string]interface{}{"user_id": user.ID, "task_uid": task.TaskUID}).Debug("user indexed")
	return nil
}

type searchHits struct {
	Hits []struct {
		ID string `json:"id"`
	} `json:"hits"`
}

// SearchUsers returns the ids of matching users in relevance order.
func (s *meiliSearchService) SearchUsers(ctx context.Context, query string, limit int) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := s.client.Index(usersIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	return parseHits(*raw)
}

func parseHits(raw []byte) ([]uuid.UUID, error) {
	var res searchHits
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode search hits: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getStringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}
