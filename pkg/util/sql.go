package util

import (
	"database/sql"
	"database/sql/driver"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/pingcap/errors"
)

// NewMySQLConnector builds a connector to a MySQL compatible database.
func NewMySQLConnector(
	host string,
	port string,
	user string,
	password string,
	dbName string,
) (driver.Connector, error) {
	// TODO(lance6716): TLS
	addr := net.JoinHostPort(host, port)
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Addr = addr
	cfg.DBName = dbName
	cfg.AllowNativePasswords = true
	cfg.ParseTime = true
	cfg.MaxAllowedPacket = -1

	c, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, errors.Annotatef(err, "connect to %s as %s", addr, user)
	}
	return c, nil
}

// ReadAllRows materializes every row of rows. Each value is kept as returned by
// the driver. Caller need to close rows after it returns.
func ReadAllRows(rows *sql.Rows) (columns []string, data [][]any, err error) {
	columns, err = rows.Columns()
	if err != nil {
		return nil, nil, errors.Annotate(err, "failed to get columns")
	}

	data = make([][]any, 0, 8)
	for rows.Next() {
		oneRow := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range oneRow {
			dest[i] = &oneRow[i]
		}
		if err = rows.Scan(dest...); err != nil {
			return nil, nil, errors.Annotatef(err, "failed to scan row %d", len(data))
		}
		data = append(data, oneRow)
	}
	if err = rows.Err(); err != nil {
		return nil, nil, errors.Annotatef(err, "failed to get rows after %d rows", len(data))
	}
	return columns, data, nil
}
