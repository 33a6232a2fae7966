package bootstrap

import (
	"errors"
	"testing"

	"anoa.com/alumnihub/pkg/database/dbtest"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_InsertsReferenceRowsIdempotently(t *testing.T) {
	h, mock := dbtest.New(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "departments" \("description"\) VALUES \(\$1\),\(\$2\),\(\$3\) ON CONFLICT DO NOTHING RETURNING "id"`).
		WithArgs("IPA", "IPS", "Bahasa").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(3))
	mock.ExpectCommit()

	// rows already present come back empty
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "dormitories" .* ON CONFLICT DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "chat_rooms" \("name","created_at"\) VALUES .* ON CONFLICT DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	require.NoError(t, Seed(h.DB))
}

func TestSeed_StopsOnError(t *testing.T) {
	h, mock := dbtest.New(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "departments"`).WillReturnError(errors.New("relation does not exist"))
	mock.ExpectRollback()

	err := Seed(h.DB)
	assert.Error(t, err)
}
