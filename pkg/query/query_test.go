package query

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lance6716/sql-data-compare/pkg/conn"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

func newConn(t *testing.T, side conn.Side, kind conn.Kind) (conn.Conn, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	c := conn.Wrap(db, side, kind)
	t.Cleanup(func() { _ = c.Close() })
	return c, mock
}

func TestExecute(t *testing.T) {
	c, mock := newConn(t, conn.Left, conn.Postgres)

	mock.ExpectQuery("SELECT id, name FROM users WHERE region = \\$1").
		WithArgs("eu").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "alice").
			AddRow(int64(2), nil))

	res, err := Execute(context.Background(), c, "SELECT id, name FROM users WHERE region = $1", "eu")
	require.NoError(t, err)
	require.Equal(t, conn.Left, res.Side)
	require.Equal(t, conn.Postgres, res.Kind)
	require.Equal(t, []string{"id", "name"}, res.Columns)
	require.Equal(t, [][]any{{int64(1), "alice"}, {int64(2), nil}}, res.Rows)
	require.Equal(t, 2, res.RowCount)
	require.Greater(t, res.Duration, time.Duration(0))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteEmptyResult(t *testing.T) {
	c, mock := newConn(t, conn.Right, conn.MSSQL)

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"a"}))
	res, err := Execute(context.Background(), c, "SELECT a FROM t WHERE 1 = 0")
	require.NoError(t, err)
	require.NotNil(t, res.Rows)
	require.Len(t, res.Rows, 0)
	require.Equal(t, 0, res.RowCount)
}

func TestExecuteError(t *testing.T) {
	c, mock := newConn(t, conn.Right, conn.MySQL)

	driverErr := errors.New("Table 'test.t' doesn't exist")
	mock.ExpectQuery("SELECT").WillReturnError(driverErr)
	_, err := Execute(context.Background(), c, "SELECT * FROM t")
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, conn.Right, execErr.Side)
	require.Equal(t, conn.MySQL, execErr.Kind)
	require.ErrorIs(t, err, driverErr)
	require.ErrorContains(t, err, "execute right query (mysql) failed after")

	// error while iterating rows
	rowErr := errors.New("connection reset")
	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"a"}).AddRow(1).AddRow(2).RowError(1, rowErr))
	_, err = Execute(context.Background(), c, "SELECT a FROM t")
	require.ErrorAs(t, err, &execErr)
	require.ErrorIs(t, err, rowErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteEmptySQL(t *testing.T) {
	c, mock := newConn(t, conn.Left, conn.MySQL)

	for _, sqlText := range []string{"", " \n\t"} {
		_, err := Execute(context.Background(), c, sqlText)
		var execErr *ExecutionError
		require.ErrorAs(t, err, &execErr)
		require.ErrorContains(t, err, "empty SQL text")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteTimeout(t *testing.T) {
	c, mock := newConn(t, conn.Left, conn.Postgres)

	mock.ExpectQuery("SELECT pg_sleep").
		WillDelayFor(2 * time.Second).
		WillReturnRows(sqlmock.NewRows([]string{"a"}).AddRow(1))

	e := Executor{Timeout: 50 * time.Millisecond}
	_, err := e.Execute(context.Background(), c, "SELECT pg_sleep(10)")
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	require.Equal(t, conn.Left, timeoutErr.Side)
	require.Equal(t, 50*time.Millisecond, timeoutErr.Timeout)
	require.Greater(t, timeoutErr.Duration, 40*time.Millisecond)
	_, isExecErr := err.(*ExecutionError)
	require.False(t, isExecErr)

	// the same query without a limit completes
	mock.ExpectQuery("SELECT pg_sleep").
		WillDelayFor(10 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"a"}).AddRow(1))
	res, err := Executor{}.Execute(context.Background(), c, "SELECT pg_sleep(0.01)")
	require.NoError(t, err)
	require.Equal(t, 1, res.RowCount)
}
