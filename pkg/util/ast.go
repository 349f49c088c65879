package util

import (
	"sync"

	"github.com/pingcap/errors"
	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/types/parser_driver"
)

var ParserPool = sync.Pool{
	New: func() any {
		return parser.New()
	},
}

// ParseMySQLQuery parses the text of a MySQL-dialect query file.
func ParseMySQLQuery(sql string) ([]ast.StmtNode, error) {
	p := ParserPool.Get().(*parser.Parser)
	stmts, _, err := p.Parse(sql, "", "")
	ParserPool.Put(p)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return stmts, nil
}

// IsReadOnlyStmt reports whether the statement only reads data.
func IsReadOnlyStmt(s ast.StmtNode) bool {
	switch s.(type) {
	case *ast.SelectStmt, *ast.SetOprStmt, *ast.ShowStmt, *ast.ExplainStmt:
		return true
	}
	return false
}

type visitor struct {
	currDB     string
	tableNames [][2]string
}

func (v *visitor) Enter(in ast.Node) (out ast.Node, skipChildren bool) {
	switch n := in.(type) {
	case *ast.TableName:
		schema := n.Schema.L
		if schema == "" {
			schema = v.currDB
		}
		v.tableNames = append(v.tableNames, [2]string{schema, n.Name.L})
	}
	return in, false
}

func (v *visitor) Leave(in ast.Node) (out ast.Node, ok bool) {
	return in, true
}

// ExtractTableNames extracts all table names from a statement node.
func ExtractTableNames(s ast.StmtNode, currDB string) [][2]string {
	v := &visitor{currDB: currDB}
	s.Accept(v)
	return v.tableNames
}
