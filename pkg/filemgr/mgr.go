package filemgr

import (
	"fmt"
	"os"
	"path"

	"github.com/lance6716/sql-data-compare/pkg/util"
	"github.com/pingcap/errors"
)

const (
	outcomeDir      = "outcomes"
	outcomeExt      = ".json"
	reportFilename  = "report.html"
	metricsFilename = "metrics.prom"
)

// Manager owns a folder and organizes the files written by a comparison run.
// The hierarchy is
//
//	<workDir>/
//	  outcomes/<NNN>-<escaped item name>.json
//	  report.html
//	  metrics.prom
type Manager struct {
	workDir string
}

// NewManager creates a new Manager instance on the given work directory.
func NewManager(workDir string) *Manager {
	return &Manager{workDir: workDir}
}

// Prepare creates the directories. It should be called before writing.
func (m *Manager) Prepare() error {
	return errors.Trace(os.MkdirAll(path.Join(m.workDir, outcomeDir), 0776))
}

// WriteOutcome writes the record of the index-th item. Items with the same name
// don't overwrite each other.
func (m *Manager) WriteOutcome(index int, name string, content []byte) error {
	return util.AtomicWrite(m.OutcomePath(index, name), content)
}

// OutcomePath returns the path of the record of the index-th item.
func (m *Manager) OutcomePath(index int, name string) string {
	filename := fmt.Sprintf("%03d-%s%s", index, util.EscapePath(name), outcomeExt)
	return path.Join(m.workDir, outcomeDir, filename)
}

// WriteReport writes the HTML report.
func (m *Manager) WriteReport(content []byte) error {
	return util.AtomicWrite(m.ReportPath(), content)
}

// ReportPath returns the path of the HTML report.
func (m *Manager) ReportPath() string {
	return path.Join(m.workDir, reportFilename)
}

// MetricsPath returns the path of the metrics textfile.
func (m *Manager) MetricsPath() string {
	return path.Join(m.workDir, metricsFilename)
}
