package conn

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, s := range []string{"mssql", "pg", "mysql"} {
		k, err := ParseKind(s)
		require.NoError(t, err)
		require.Equal(t, Kind(s), k)

		e, err := EngineFor(k)
		require.NoError(t, err)
		require.Equal(t, k, e.Kind())
	}

	_, err := ParseKind("oracle")
	require.ErrorContains(t, err, `unsupported database type "oracle", must be one of mssql, mysql, pg`)
	_, err = EngineFor("")
	require.Error(t, err)
}

func TestMSSQLDSN(t *testing.T) {
	ep := Endpoint{
		Host:     "sql.local",
		Port:     "1433",
		Database: "sales",
		User:     "reader",
		Password: "p@ss;word",
		Encrypt:  "yes",
	}
	dsn := mssqlDSN(ep)
	u, err := url.Parse(dsn)
	require.NoError(t, err)
	require.Equal(t, "sqlserver", u.Scheme)
	require.Equal(t, "sql.local:1433", u.Host)
	require.Equal(t, "reader", u.User.Username())
	password, _ := u.User.Password()
	require.Equal(t, "p@ss;word", password)
	require.Equal(t, "sales", u.Query().Get("database"))
	require.Equal(t, "true", u.Query().Get("encrypt"))

	for in, expected := range map[string]string{
		"no":        "false",
		"Optional":  "false",
		"Mandatory": "true",
		"strict":    "strict",
		"disable":   "disable",
	} {
		ep.Encrypt = in
		u, err = url.Parse(mssqlDSN(ep))
		require.NoError(t, err)
		require.Equal(t, expected, u.Query().Get("encrypt"), "input: %s", in)
	}

	ep.Encrypt = "no"
	c, err := mssqlEngine{}.Connector(ep)
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestPGDSN(t *testing.T) {
	ep := Endpoint{
		Host:     "pg.local",
		Port:     "5432",
		Database: "sales",
		User:     "reader",
		Password: `it's a \secret`,
	}
	require.Equal(t,
		`host=pg.local port=5432 dbname=sales user=reader password='it\'s a \\secret' sslmode=disable`,
		pgDSN(ep))

	ep.Password = ""
	ep.SSLMode = "require"
	require.Equal(t,
		`host=pg.local port=5432 dbname=sales user=reader password='' sslmode=require`,
		pgDSN(ep))

	c, err := pgEngine{}.Connector(ep)
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestMySQLConnector(t *testing.T) {
	c, err := mysqlEngine{}.Connector(Endpoint{
		Host:     "127.0.0.1",
		Port:     "3306",
		Database: "sales",
		User:     "root",
	})
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestUnretryable(t *testing.T) {
	cases := []struct {
		engine      Engine
		err         error
		unretryable bool
	}{
		{mysqlEngine{}, &mysql.MySQLError{Number: 1045, Message: "Access denied"}, true},
		{mysqlEngine{}, errors.Trace(&mysql.MySQLError{Number: 1049}), true},
		{mysqlEngine{}, fmt.Errorf("wrapped: %w", &mysql.MySQLError{Number: 1040}), false},
		{mysqlEngine{}, errors.New("connection refused"), false},
		{pgEngine{}, &pq.Error{Code: "28P01"}, true},
		{pgEngine{}, fmt.Errorf("wrapped: %w", &pq.Error{Code: "3D000"}), true},
		{pgEngine{}, &pq.Error{Code: "57P03"}, false},
		{pgEngine{}, &mysql.MySQLError{Number: 1045}, false},
		{mssqlEngine{}, mssql.Error{Number: 18456}, true},
		{mssqlEngine{}, fmt.Errorf("wrapped: %w", mssql.Error{Number: 4060}), true},
		{mssqlEngine{}, mssql.Error{Number: 1205}, false},
		{mssqlEngine{}, errors.New("i/o timeout"), false},
	}
	for i, ca := range cases {
		require.Equal(t, ca.unretryable, ca.engine.Unretryable(ca.err), "case %d: %v", i, ca.err)
	}
}
