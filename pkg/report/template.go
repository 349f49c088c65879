package report

const tpl = `
<!DOCTYPE html>
<html>
 <head>
  <meta charset="UTF-8">
  <title>SQL Data Compare Report</title>
 </head>
 <body>
  <h1>SQL Data Compare Report</h1>
  <h2>Task Information:</h2>
  {{ range .TaskInfoItems }}
  <b>{{ index . 0 }} : </b>{{ index . 1 }}<br>
  {{ end }}
  <h2>Execution Information:</h2>
  {{ range .ExecutionInfoItems }}
  <b>{{ index . 0 }} : </b>{{ index . 1 }}<br>
  {{ end }}
  <h2>Report Summary: {{ .Summary.Verdict }}</h2>
  <table>
   <tr>
    <th>Category</th>
    <th>Item Count</th>
   </tr>
   <tr>
    <td>Overall</td>
    <td>{{ .Summary.Overall }}</td>
   </tr>
   <tr>
    <td>Equal</td>
    <td>{{ .Summary.Equal }}</td>
   </tr>
   <tr>
    <td>Not Equal</td>
    <td>{{ .Summary.NotEqual }}</td>
   </tr>
   <tr>
    <td>With Errors</td>
    <td>{{ .Summary.Errored }}</td>
   </tr>
  </table>
  <h2>Items:</h2>
  <table>
   <tr>
    {{ range .Items.Header }}
    <th>{{ . }}</th>
    {{ end }}
   </tr>
   {{ range .Items.Data }}
   <tr>
    {{ range . }}
    <td>{{ . }}</td>
    {{ end }}
   </tr>
   {{ end }}
  </table>
  <h2>Details:</h2>
  {{ range .Details }}
  <h3>{{ .Header }}</h3>
  {{ range .Labels }}
  <b>{{ index . 0 }} : </b>{{ index . 1 }}<br>
  {{ end }}
  {{ if .Left }}
  Left Query:<br>
  {{ range .Left.Labels }}
  <b>{{ index . 0 }} : </b>{{ index . 1 }}<br>
  {{ end }}
  <pre>{{ .Left.Text }}</pre>
  {{ end }}
  {{ if .Right }}
  Right Query:<br>
  {{ range .Right.Labels }}
  <b>{{ index . 0 }} : </b>{{ index . 1 }}<br>
  {{ end }}
  <pre>{{ .Right.Text }}</pre>
  {{ end }}
  {{ end }}
 </body>
</html>`
