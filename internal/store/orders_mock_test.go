package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/safar/tg-shop/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrderNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, status").
		WithArgs(int64(99), int64(1)).
		WillReturnError(sql.ErrNoRows)

	_, err = GetOrder(context.Background(), db, 1, 99)
	assert.ErrorIs(t, err, database.ErrOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, category_id, title").
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err = GetProduct(context.Background(), db, 404)
	assert.ErrorIs(t, err, database.ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelOrderNotFoundRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, user_id, status").
		WithArgs(int64(99), int64(1)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err = CancelOrder(context.Background(), db, 1, 99)
	assert.ErrorIs(t, err, database.ErrOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderNoCartRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM carts").
		WithArgs(int64(1)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err = CreateOrder(context.Background(), db, 1, "RUB")
	assert.ErrorIs(t, err, database.ErrEmptyCart)
	assert.NoError(t, mock.ExpectationsWereMet())
}
