// Package conn opens database connections for the two sides of a comparison.
// Every supported database kind is an Engine; the credentials of both sides
// are read once into an Env.
package conn

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pingcap/errors"
)

// Side is one of the two sources being compared.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

func (s Side) envPrefix() string {
	return strings.ToUpper(string(s))
}

// Kind is the database engine backing a side.
type Kind string

const (
	MSSQL    Kind = "mssql"
	Postgres Kind = "pg"
	MySQL    Kind = "mysql"
)

// ParseKind converts the db type string used in configuration files to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := engines[k]; ok {
		return k, nil
	}
	return "", errors.Errorf("unsupported database type %q, must be one of %s", s, strings.Join(kindNames(), ", "))
}

// Conn is an open connection to one database endpoint. It is owned by a single
// comparison item and must be closed by it.
type Conn interface {
	Side() Side
	Kind() Kind
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	Close() error
}

// Provider opens connections.
type Provider interface {
	Open(ctx context.Context, side Side, kind Kind) (Conn, error)
}

type dbConn struct {
	*sql.DB
	side Side
	kind Kind
}

// Wrap turns an opened *sql.DB into a Conn. The Conn takes the ownership of db.
func Wrap(db *sql.DB, side Side, kind Kind) Conn {
	return &dbConn{DB: db, side: side, kind: kind}
}

func (c *dbConn) Side() Side { return c.side }

func (c *dbConn) Kind() Kind { return c.kind }

// ConnectionError is returned when a connection for a side cannot be
// established.
type ConnectionError struct {
	Side  Side
	Kind  Kind
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("open %s connection (%s): %v", e.Side, e.Kind, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}
