package report

import (
	"html/template"
	"io"

	"github.com/pingcap/errors"
)

var t = template.Must(template.New("report").Parse(tpl))

// Report is the data of the HTML report of one run.
type Report struct {
	TaskInfoItems      [][2]string // [key, value]
	ExecutionInfoItems [][2]string
	Summary            Summary
	Items              Table
	Details            []Details
}

type Summary struct {
	Verdict  string
	Overall  int
	Equal    int
	NotEqual int
	Errored  int
}

type Table struct {
	Header []string
	Data   [][]string
}

// Details is the section of one item.
type Details struct {
	Header string
	Labels [][2]string
	Left   *Query
	Right  *Query
}

type Query struct {
	Labels [][2]string
	Text   string
}

// Render writes the HTML of r to w.
func Render(r *Report, w io.Writer) error {
	return errors.Trace(t.Execute(w, r))
}
