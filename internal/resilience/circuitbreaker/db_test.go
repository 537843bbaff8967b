package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBCircuitBreaker_QueryContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT id, name FROM publishers").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Daily"))

	dcb := NewDBCircuitBreaker(db)
	rows, err := dcb.QueryContext(context.Background(), "SELECT id, name FROM publishers")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next())
	var id int64
	var name string
	require.NoError(t, rows.Scan(&id, &name))
	assert.Equal(t, "Daily", name)
	assert.False(t, dcb.IsOpen())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBCircuitBreaker_ExecContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("DELETE FROM reader_publisher_subscriptions").
		WillReturnResult(sqlmock.NewResult(0, 2))

	res, err := NewDBCircuitBreaker(db).ExecContext(context.Background(), "DELETE FROM reader_publisher_subscriptions WHERE reader_id = $1", 1)
	require.NoError(t, err)
	n, _ := res.RowsAffected()
	assert.EqualValues(t, 2, n)
}

func TestDBCircuitBreaker_OpensAfterFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	cfg := DBConfig()
	cfg.MinRequests = 3
	cfg.Timeout = time.Minute
	dcb := NewDBCircuitBreakerWithConfig(db, cfg)

	down := errors.New("connection refused")
	for i := 0; i < 3; i++ {
		mock.ExpectQuery("SELECT 1").WillReturnError(down)
		_, err := dcb.QueryContext(context.Background(), "SELECT 1")
		assert.ErrorIs(t, err, down)
	}
	assert.True(t, dcb.IsOpen())

	_, err = dcb.QueryContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	_, err = dcb.ExecContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.NoError(t, mock.ExpectationsWereMet())
}
