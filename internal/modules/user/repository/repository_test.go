package repository

import (
	"context"
	"errors"
	"testing"

	"anoa.com/alumnihub/pkg/database/dbtest"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestExistsByEmail(t *testing.T) {
	h, mock := dbtest.New(t)
	repo := NewUserRepository(h)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE email = \$1`).
		WithArgs("alice@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFindByAPIKey(t *testing.T) {
	h, mock := dbtest.New(t)
	repo := NewUserRepository(h)
	id := uuid.New()

	mock.ExpectQuery(`SELECT "id","name","email","status" FROM "users" WHERE api_key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "status"}).AddRow(id.String(), "Alice", "alice@x.com", 1))

	user, err := repo.FindByAPIKey(context.Background(), "key")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Empty(t, user.PasswordHash)
}

func TestFindByAPIKey_NotFound(t *testing.T) {
	h, mock := dbtest.New(t)
	repo := NewUserRepository(h)

	mock.ExpectQuery(`FROM "users" WHERE api_key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "status"}))

	_, err := repo.FindByAPIKey(context.Background(), "missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestFindByIDs_UsesSingleInQuery(t *testing.T) {
	h, mock := dbtest.New(t)
	repo := NewUserRepository(h)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id IN \(\$1,\$2\)`).
		WithArgs(a, b).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(a.String(), "A").AddRow(b.String(), "B"))

	users, err := repo.FindByIDs(context.Background(), []uuid.UUID{a, b})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestFindByIDs_EmptyInputSkipsQuery(t *testing.T) {
	h, _ := dbtest.New(t)
	users, err := NewUserRepository(h).FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUpdateDeviceToken(t *testing.T) {
	h, mock := dbtest.New(t)
	repo := NewUserRepository(h)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "gcm_registration_id"=\$1 WHERE id = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	updated, err := repo.UpdateDeviceToken(context.Background(), uuid.New(), "tok")
	require.NoError(t, err)
	assert.False(t, updated)
}
