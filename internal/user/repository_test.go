package user

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "email", "password_hash", "created_at", "updated_at"}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("a@b.io", "hash").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "a@b.io", "hash", time.Now(), time.Now()))

		u, err := repo.Create(context.Background(), "a@b.io", "hash")
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").WillReturnError(errors.New("db error"))

		_, err := repo.Create(context.Background(), "a@b.io", "hash")
		assert.Error(t, err)
	})
}

func TestRepository_Find(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery("FROM users WHERE email = \\$1").
		WithArgs("x@b.io").
		WillReturnRows(sqlmock.NewRows(userCols))

	u, err := repo.FindByEmail(context.Background(), "x@b.io")
	assert.NoError(t, err)
	assert.Nil(t, u)

	mock.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(4, "d@b.io", "h", time.Now(), time.Now()))

	u, err = repo.FindByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "d@b.io", u.Email)
}

func TestRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	hash := "newhash"

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs("newhash", int64(1)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "a@b.io", "newhash", time.Now(), time.Now()))

	u, err := repo.Update(context.Background(), 1, nil, &hash)
	require.NoError(t, err)
	assert.Equal(t, "newhash", u.PasswordHash)

	_, err = repo.Update(context.Background(), 1, nil, nil)
	assert.Error(t, err)
}

func TestRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec("DELETE FROM users WHERE id = \\$1").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Delete(context.Background(), 1)
	assert.NoError(t, err)
	assert.False(t, ok)
}
