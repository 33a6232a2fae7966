package jobs

import (
	"context"
	"fmt"

	"anoa.com/alumnihub/internal/entity"
	"github.com/google/uuid"
)

// Pruner is anything holding per-client state that must be trimmed.
type Pruner interface {
	Cleanup()
}

type pruneJob struct {
	name     string
	schedule string
	target   Pruner
}

// NewPruneJob calls target.Cleanup on schedule.
func NewPruneJob(name, schedule string, target Pruner) Job {
	return &pruneJob{name: name, schedule: schedule, target: target}
}

func (j *pruneJob) Name() string     { return j.name }
func (j *pruneJob) Schedule() string { return j.schedule }

func (j *pruneJob) Run(context.Context) error {
	j.target.Cleanup()
	return nil
}

// UserSource lists every user. FindAllExcept with uuid.Nil excludes nobody.
type UserSource interface {
	FindAllExcept(ctx context.Context, id uuid.UUID) ([]*entity.User, error)
}

type UserIndexer interface {
	IndexUser(ctx context.Context, user *entity.User) error
}

type reindexJob struct {
	schedule string
	users    UserSource
	index    UserIndexer
}

// NewReindexJob rebuilds the search index from the user table so documents
// missed by the per-write async indexing catch up.
func NewReindexJob(schedule string, users UserSource, index UserIndexer) Job {
	return &reindexJob{schedule: schedule, users: users, index: index}
}

func (j *reindexJob) Name() string     { return "user-reindex" }
func (j *reindexJob) Schedule() string { return j.schedule }

func (j *reindexJob) Run(ctx context.Context) error {
	users, err := j.users.FindAllExcept(ctx, uuid.Nil)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	failed := 0
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.index.IndexUser(ctx, u); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d users failed to index", failed, len(users))
	}
	return nil
}
