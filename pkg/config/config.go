// Package config loads the list of comparisons to run.
//
// The configuration file holds a "compare_list" sequence. Each item names the
// database kind and the query file of both sides, for example
//
//	{
//	  "compare_list": [
//	    {
//	      "name": "daily sales",
//	      "left_db_type": "mssql",
//	      "left_query_file": "sales_mssql.sql",
//	      "right_db_type": "pg",
//	      "right_query_file": "sales_pg.sql",
//	      "right_params": ["2024-01-01"]
//	    }
//	  ]
//	}
//
// Files ending with .yaml or .yml are read as YAML, others as JSON.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lance6716/sql-data-compare/pkg/conn"
	"github.com/lance6716/sql-data-compare/pkg/util"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const listKey = "compare_list"

// Item is one comparison. It is immutable after loading.
type Item struct {
	Name string

	LeftKind      conn.Kind
	LeftQueryFile string
	LeftParams    []any

	RightKind      conn.Kind
	RightQueryFile string
	RightParams    []any
}

// Comparisons is a loaded configuration.
type Comparisons struct {
	Items  []Item
	SQLDir string
}

// Error is returned when the configuration can't be loaded. Path is the
// configuration file, or the query file when that one is the problem.
type Error struct {
	Path  string
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Path, e.Msg, e.Cause)
	}
	return fmt.Sprintf("config %s: %s", e.Path, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Load reads and validates the configuration at configPath. Query files are
// resolved under sqlDir and must all exist.
func Load(configPath, sqlDir string) (*Comparisons, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, &Error{Path: configPath, Msg: "can't read file", Cause: err}
	}
	doc, err := decode(configPath, content)
	if err != nil {
		return nil, &Error{Path: configPath, Msg: "invalid content", Cause: err}
	}

	root, ok := doc.(map[string]any)
	if !ok {
		return nil, &Error{Path: configPath, Msg: fmt.Sprintf("config must contain a '%s' array", listKey)}
	}
	list, ok := root[listKey].([]any)
	if !ok {
		return nil, &Error{Path: configPath, Msg: fmt.Sprintf("config must contain a '%s' array", listKey)}
	}

	cmps := &Comparisons{
		Items:  make([]Item, 0, len(list)),
		SQLDir: sqlDir,
	}
	for i, raw := range list {
		item, msg := parseItem(raw)
		if msg != "" {
			return nil, &Error{Path: configPath, Msg: fmt.Sprintf("%s[%d]: %s", listKey, i, msg)}
		}
		for _, side := range []struct {
			kind conn.Kind
			file string
		}{
			{item.LeftKind, item.LeftQueryFile},
			{item.RightKind, item.RightQueryFile},
		} {
			if err = cmps.checkQueryFile(side.kind, side.file); err != nil {
				return nil, err
			}
		}
		cmps.Items = append(cmps.Items, item)
	}

	util.Logger.Info("comparison config loaded",
		zap.String("path", configPath),
		zap.String("sql-dir", sqlDir),
		zap.Int("items", len(cmps.Items)))
	return cmps, nil
}

// QueryText reads the query file filename from the SQL directory.
func (c *Comparisons) QueryText(filename string) (string, error) {
	p := filepath.Join(c.SQLDir, filename)
	content, err := os.ReadFile(p)
	if err != nil {
		return "", &Error{Path: p, Msg: "can't read query file", Cause: err}
	}
	return string(content), nil
}

func decode(path string, content []byte) (any, error) {
	var (
		doc  any
		rest any
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		d := yaml.NewDecoder(bytes.NewReader(content))
		if err := d.Decode(&doc); err != nil && err != io.EOF {
			return nil, err
		}
		if err := d.Decode(&rest); err != io.EOF {
			return nil, errors.Errorf("unexpected content after the first document")
		}
	default:
		d := json.NewDecoder(bytes.NewReader(content))
		d.UseNumber()
		if err := d.Decode(&doc); err != nil {
			return nil, err
		}
		offset := d.InputOffset()
		if err := d.Decode(&rest); err != io.EOF {
			return nil, errors.Errorf("unexpected content after offset %d", offset)
		}
	}
	return doc, nil
}

// parseItem returns a non-empty message when raw is not a valid item.
func parseItem(raw any) (Item, string) {
	m, ok := raw.(map[string]any)
	if !ok {
		return Item{}, "must be an object"
	}

	var (
		item Item
		msg  string
	)
	str := func(key string) string {
		if msg != "" {
			return ""
		}
		v, ok := m[key]
		if !ok {
			msg = fmt.Sprintf("missing required field %q", key)
			return ""
		}
		s, ok := v.(string)
		if !ok {
			msg = fmt.Sprintf("field %q must be a string, got %T", key, v)
		}
		return s
	}
	kind := func(key string) conn.Kind {
		s := str(key)
		if msg != "" {
			return ""
		}
		k, err := conn.ParseKind(s)
		if err != nil {
			msg = fmt.Sprintf("field %q: %v", key, err)
		}
		return k
	}
	params := func(key string) []any {
		if msg != "" {
			return nil
		}
		v, ok := m[key]
		if !ok || v == nil {
			return nil
		}
		ps, err := parseParams(v)
		if err != nil {
			msg = fmt.Sprintf("field %q: %v", key, err)
		}
		return ps
	}

	item.Name = str("name")
	item.LeftKind = kind("left_db_type")
	item.LeftQueryFile = str("left_query_file")
	item.LeftParams = params("left_params")
	item.RightKind = kind("right_db_type")
	item.RightQueryFile = str("right_query_file")
	item.RightParams = params("right_params")
	return item, msg
}

// parseParams converts a sequence of scalars to values usable as query
// arguments.
func parseParams(v any) ([]any, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, errors.Errorf("must be an array, got %T", v)
	}
	ret := make([]any, 0, len(list))
	for i, p := range list {
		switch x := p.(type) {
		case nil, string, bool, int64, float64:
			ret = append(ret, x)
		case int:
			ret = append(ret, int64(x))
		case json.Number:
			if n, err := x.Int64(); err == nil {
				ret = append(ret, n)
				continue
			}
			f, err := x.Float64()
			if err != nil {
				return nil, errors.Annotatef(err, "element %d", i)
			}
			ret = append(ret, f)
		default:
			return nil, errors.Errorf("element %d must be a scalar, got %T", i, p)
		}
	}
	return ret, nil
}

func (c *Comparisons) checkQueryFile(kind conn.Kind, filename string) error {
	p := filepath.Join(c.SQLDir, filename)
	ok, err := util.IsRegularFile(p)
	if err != nil {
		return &Error{Path: p, Msg: "can't stat query file", Cause: err}
	}
	if !ok {
		return &Error{Path: p, Msg: "SQL file not found"}
	}
	if kind != conn.MySQL {
		return nil
	}

	text, err := c.QueryText(filename)
	if err != nil {
		return err
	}
	return checkMySQLQuery(p, text)
}

// checkMySQLQuery rejects files holding more than one statement. Text the
// parser doesn't understand is left to the server.
func checkMySQLQuery(path, text string) error {
	stmts, err := util.ParseMySQLQuery(text)
	if err != nil {
		util.Logger.Warn("can't parse query file, skip checking it",
			zap.String("path", path),
			zap.Error(err))
		return nil
	}
	if len(stmts) != 1 {
		return &Error{Path: path, Msg: fmt.Sprintf("query file must contain exactly one statement, got %d", len(stmts))}
	}
	stmt := stmts[0]
	if !util.IsReadOnlyStmt(stmt) {
		util.Logger.Warn("query file is not a read-only statement",
			zap.String("path", path))
	}
	tables := util.ExtractTableNames(stmt, "")
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		if t[0] == "" {
			names = append(names, t[1])
			continue
		}
		names = append(names, t[0]+"."+t[1])
	}
	util.Logger.Debug("query file checked",
		zap.String("path", path),
		zap.Strings("tables", names))
	return nil
}
