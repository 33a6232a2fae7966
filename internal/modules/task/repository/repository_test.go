package repository

import (
	"context"
	"errors"
	"testing"

	"anoa.com/alumnihub/internal/entity"
	"anoa.com/alumnihub/pkg/database/dbtest"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_InsertsTaskAndOwnerInOneTransaction(t *testing.T) {
	h, mock := dbtest.New(t)
	repo := NewTaskRepository(h)
	user := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec(`INSERT INTO "user_tasks"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	task := &entity.Task{Text: "buy milk"}
	require.NoError(t, repo.Create(context.Background(), user, task))
	assert.Equal(t, uint(42), task.ID)
}

func TestCreate_RollsBackWhenOwnershipFails(t *testing.T) {
	h, mock := dbtest.New(t)
	repo := NewTaskRepository(h)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(`INSERT INTO "user_tasks"`).
		WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), uuid.New(), &entity.Task{Text: "x"})
	assert.Error(t, err)
}

func TestFindByID_ScopedToOwner(t *testing.T) {
	h, mock := dbtest.New(t)
	repo := NewTaskRepository(h)

	mock.ExpectQuery(`SELECT "tasks"\."id".* FROM "tasks" JOIN user_tasks ut ON ut.task_id = tasks.id WHERE ut.user_id = \$1 AND tasks.id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "task", "status"}).AddRow(3, "buy milk", 0))

	task, err := repo.FindByID(context.Background(), uuid.New(), 3)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Text)
}

func TestUpdate_NotOwnedAffectsNothing(t *testing.T) {
	h, mock := dbtest.New(t)
	repo := NewTaskRepository(h)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET .* WHERE id = \$\d+ AND id IN \(SELECT task_id FROM "user_tasks" WHERE user_id = \$\d+\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	updated, err := repo.Update(context.Background(), uuid.New(), 3, "x", 1)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestDelete_NotOwnedLeavesTask(t *testing.T) {
	h, mock := dbtest.New(t)
	repo := NewTaskRepository(h)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "user_tasks" WHERE user_id = \$1 AND task_id = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	deleted, err := repo.Delete(context.Background(), uuid.New(), 3)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDelete_Owned(t *testing.T) {
	h, mock := dbtest.New(t)
	repo := NewTaskRepository(h)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "user_tasks"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "tasks" WHERE id = \$1`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, err := repo.Delete(context.Background(), uuid.New(), 3)
	require.NoError(t, err)
	assert.True(t, deleted)
}
