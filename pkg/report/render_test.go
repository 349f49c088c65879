package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := &Report{
		TaskInfoItems: [][2]string{
			{"Config", "config.json"},
		},
		ExecutionInfoItems: [][2]string{
			{"Elapsed", "1.5s"},
			{"Concurrency", "4"},
		},
		Summary: Summary{
			Verdict:  "some items are not equal",
			Overall:  2,
			Equal:    1,
			NotEqual: 1,
		},
		Items: Table{
			Header: []string{"#", "Name", "Status"},
			Data: [][]string{
				{"0", "sales", "equal"},
				{"1", "orders", "not-equal"},
			},
		},
		Details: []Details{
			{
				Header: "orders",
				Labels: [][2]string{
					{"First Difference", "row 3 column 1: int64(1) vs int64(2)"},
				},
				Left: &Query{
					Labels: [][2]string{{"Kind", "mssql"}},
					Text:   "SELECT id FROM orders WHERE amount > 10 AND amount < 20",
				},
				Right: &Query{
					Text: "SELECT id FROM orders WHERE amount BETWEEN 10 AND 20",
				},
			},
			{
				Header: "errored",
				Labels: [][2]string{{"Error", "<nil>"}},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(r, &buf))
	out := buf.String()
	require.Contains(t, out, "<h2>Report Summary: some items are not equal</h2>")
	require.Contains(t, out, "<td>orders</td>")
	require.Contains(t, out, "<pre>SELECT id FROM orders WHERE amount &gt; 10 AND amount &lt; 20</pre>")
	require.Contains(t, out, "<b>Error : </b>&lt;nil&gt;<br>")
	require.Contains(t, out, "Right Query:")
}
