package sdc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/lance6716/sql-data-compare/pkg/filemgr"
	"github.com/lance6716/sql-data-compare/pkg/metrics"
	"github.com/lance6716/sql-data-compare/pkg/query"
	"github.com/lance6716/sql-data-compare/pkg/report"
	"github.com/pingcap/errors"
)

type outcomeRecord struct {
	Index         int        `json:"index"`
	Name          string     `json:"name"`
	Status        Status     `json:"status"`
	Stage         Stage      `json:"stage"`
	Error         string     `json:"error,omitempty"`
	Left          sideRecord `json:"left"`
	Right         sideRecord `json:"right"`
	IsEqual       bool       `json:"is_equal"`
	RowCountMatch bool       `json:"row_count_match"`
	PerfRatio     *float64   `json:"perf_ratio,omitempty"`
	FirstDiff     string     `json:"first_diff,omitempty"`
}

type sideRecord struct {
	Kind       string   `json:"kind"`
	QueryFile  string   `json:"query_file"`
	Params     []any    `json:"params,omitempty"`
	RowCount   *int     `json:"row_count,omitempty"`
	DurationMS *int64   `json:"duration_ms,omitempty"`
	Columns    []string `json:"columns,omitempty"`
}

func newOutcomeRecord(o *Outcome) *outcomeRecord {
	rec := &outcomeRecord{
		Index:  o.Index,
		Name:   o.Item.Name,
		Status: o.Status,
		Stage:  o.Stage,
		Left: sideRecord{
			Kind:      string(o.Item.LeftKind),
			QueryFile: o.Item.LeftQueryFile,
			Params:    o.Item.LeftParams,
		},
		Right: sideRecord{
			Kind:      string(o.Item.RightKind),
			QueryFile: o.Item.RightQueryFile,
			Params:    o.Item.RightParams,
		},
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	if res := o.Result; res != nil {
		fillSide(&rec.Left, res.Left)
		fillSide(&rec.Right, res.Right)
		rec.IsEqual = res.IsEqual
		rec.RowCountMatch = res.RowCountMatch
		if ratio, ok := res.PerfRatio(); ok {
			rec.PerfRatio = &ratio
		}
		if res.FirstDiff != nil {
			rec.FirstDiff = res.FirstDiff.String()
		}
	}
	return rec
}

func fillSide(rec *sideRecord, res *query.Result) {
	rowCount := res.RowCount
	ms := res.Duration.Milliseconds()
	rec.RowCount = &rowCount
	rec.DurationMS = &ms
	rec.Columns = res.Columns
}

func writeOutputs(
	cfg *Config,
	startedAt time.Time,
	s *Summary,
	mgr *filemgr.Manager,
	m *metrics.Metrics,
) error {
	for i := range s.Outcomes {
		o := &s.Outcomes[i]
		content, err := json.MarshalIndent(newOutcomeRecord(o), "", "  ")
		if err != nil {
			return errors.Annotatef(err, "encode outcome of %s", o.Item.Name)
		}
		if err = mgr.WriteOutcome(o.Index, o.Item.Name, content); err != nil {
			return errors.Trace(err)
		}
	}

	var buf bytes.Buffer
	if err := report.Render(buildReport(cfg, startedAt, s), &buf); err != nil {
		return errors.Trace(err)
	}
	if err := mgr.WriteReport(buf.Bytes()); err != nil {
		return errors.Trace(err)
	}
	return m.WriteTextfile(mgr.MetricsPath())
}

func buildReport(cfg *Config, startedAt time.Time, s *Summary) *report.Report {
	r := &report.Report{
		TaskInfoItems: [][2]string{
			{"Task Name", cfg.TaskName},
			{"Config File", cfg.ConfigPath},
			{"SQL Directory", cfg.SQLDir},
		},
		ExecutionInfoItems: [][2]string{
			{"Started At", startedAt.Format(time.RFC3339)},
			{"Elapsed", s.Elapsed.String()},
			{"Concurrency", strconv.Itoa(cfg.Concurrency)},
			{"Parallel Sides", strconv.FormatBool(cfg.ParallelSides)},
		},
		Summary: report.Summary{
			Verdict:  string(s.Verdict()),
			Overall:  len(s.Outcomes),
			Equal:    s.Equal,
			NotEqual: s.NotEqual,
			Errored:  s.Errored,
		},
		Items: report.Table{
			Header: []string{
				"#", "Name", "Left", "Right", "Status",
				"Left Rows", "Right Rows", "Left Time", "Right Time", "Right/Left",
			},
		},
	}
	if cfg.QueryTimeout > 0 {
		r.ExecutionInfoItems = append(r.ExecutionInfoItems, [2]string{"Query Timeout", cfg.QueryTimeout.String()})
	}

	for i := range s.Outcomes {
		o := &s.Outcomes[i]
		row := []string{
			strconv.Itoa(o.Index),
			o.Item.Name,
			string(o.Item.LeftKind),
			string(o.Item.RightKind),
			string(o.Status),
			"-", "-", "-", "-", "-",
		}
		details := report.Details{
			Header: fmt.Sprintf("#%d %s: %s", o.Index, o.Item.Name, o.Status),
			Labels: [][2]string{{"Stage", string(o.Stage)}},
			Left: &report.Query{
				Labels: [][2]string{{"Kind", string(o.Item.LeftKind)}, {"File", o.Item.LeftQueryFile}},
				Text:   o.LeftSQL,
			},
			Right: &report.Query{
				Labels: [][2]string{{"Kind", string(o.Item.RightKind)}, {"File", o.Item.RightQueryFile}},
				Text:   o.RightSQL,
			},
		}
		if o.Err != nil {
			details.Labels = append(details.Labels, [2]string{"Error", o.Err.Error()})
		}
		if res := o.Result; res != nil {
			row[5] = strconv.Itoa(res.Left.RowCount)
			row[6] = strconv.Itoa(res.Right.RowCount)
			row[7] = res.Left.Duration.String()
			row[8] = res.Right.Duration.String()
			if ratio, ok := res.PerfRatio(); ok {
				row[9] = strconv.FormatFloat(ratio, 'f', 2, 64)
			}
			details.Labels = append(details.Labels,
				[2]string{"Row Count Match", strconv.FormatBool(res.RowCountMatch)})
			if res.FirstDiff != nil {
				details.Labels = append(details.Labels, [2]string{"First Difference", res.FirstDiff.String()})
			}
		}
		r.Items.Data = append(r.Items.Data, row)
		r.Details = append(r.Details, details)
	}
	return r
}
