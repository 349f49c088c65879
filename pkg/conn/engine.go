package conn

import (
	"database/sql/driver"
	goerrors "errors"
	"net"
	"net/url"
	"slices"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lance6716/sql-data-compare/pkg/util"
	"github.com/lib/pq"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/pingcap/errors"
)

// Engine is the per-kind part of opening a connection.
type Engine interface {
	Kind() Kind
	// RequiredEnv returns the side-independent variables the engine needs
	// besides the per-side ones.
	RequiredEnv() []string
	// Connector builds a database/sql connector to ep.
	Connector(ep Endpoint) (driver.Connector, error)
	// Unretryable reports whether err, returned when connecting, will not
	// recover by retrying.
	Unretryable(err error) bool
}

var engines = map[Kind]Engine{
	MSSQL:    mssqlEngine{},
	Postgres: pgEngine{},
	MySQL:    mysqlEngine{},
}

// EngineFor returns the Engine of kind.
func EngineFor(kind Kind) (Engine, error) {
	e, ok := engines[kind]
	if !ok {
		return nil, errors.Errorf("unsupported database type %q, must be one of %s", kind, strings.Join(kindNames(), ", "))
	}
	return e, nil
}

func kindNames() []string {
	names := make([]string, 0, len(engines))
	for k := range engines {
		names = append(names, string(k))
	}
	slices.Sort(names)
	return names
}

type mssqlEngine struct{}

func (mssqlEngine) Kind() Kind { return MSSQL }

func (mssqlEngine) RequiredEnv() []string { return []string{envEncrypt} }

func (mssqlEngine) Connector(ep Endpoint) (driver.Connector, error) {
	return mssql.NewConnector(mssqlDSN(ep))
}

// mssqlDSN builds the URL form accepted by go-mssqldb. ODBC style yes/no values
// of DB_ENCRYPT are translated.
func mssqlDSN(ep Endpoint) string {
	encrypt := strings.ToLower(strings.TrimSpace(ep.Encrypt))
	switch encrypt {
	case "yes", "mandatory":
		encrypt = "true"
	case "no", "optional":
		encrypt = "false"
	}
	q := url.Values{}
	q.Set("database", ep.Database)
	q.Set("encrypt", encrypt)
	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(ep.User, ep.Password),
		Host:     net.JoinHostPort(ep.Host, ep.Port),
		RawQuery: q.Encode(),
	}
	return u.String()
}

func (mssqlEngine) Unretryable(err error) bool {
	var merr mssql.Error
	if !goerrors.As(err, &merr) {
		return false
	}
	switch merr.Number {
	case 18456, // login failed
		4060: // cannot open database
		return true
	}
	return false
}

type pgEngine struct{}

func (pgEngine) Kind() Kind { return Postgres }

func (pgEngine) RequiredEnv() []string { return nil }

func (pgEngine) Connector(ep Endpoint) (driver.Connector, error) {
	return pq.NewConnector(pgDSN(ep))
}

// pgDSN builds the keyword/value form accepted by lib/pq.
func pgDSN(ep Endpoint) string {
	sslMode := ep.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	pairs := [][2]string{
		{"host", ep.Host},
		{"port", ep.Port},
		{"dbname", ep.Database},
		{"user", ep.User},
		{"password", ep.Password},
		{"sslmode", sslMode},
	}
	var b strings.Builder
	for i, kv := range pairs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(kv[0])
		b.WriteByte('=')
		b.WriteString(quotePGValue(kv[1]))
	}
	return b.String()
}

func quotePGValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

func (pgEngine) Unretryable(err error) bool {
	var perr *pq.Error
	if !goerrors.As(err, &perr) {
		return false
	}
	switch perr.Code {
	case "28000", // invalid_authorization_specification
		"28P01", // invalid_password
		"3D000": // invalid_catalog_name
		return true
	}
	return false
}

type mysqlEngine struct{}

func (mysqlEngine) Kind() Kind { return MySQL }

func (mysqlEngine) RequiredEnv() []string { return nil }

func (mysqlEngine) Connector(ep Endpoint) (driver.Connector, error) {
	return util.NewMySQLConnector(ep.Host, ep.Port, ep.User, ep.Password, ep.Database)
}

func (mysqlEngine) Unretryable(err error) bool {
	var merr *mysql.MySQLError
	if !goerrors.As(err, &merr) {
		return false
	}
	return util.CheckMySQLErrorUnretryable(merr)
}
