package rendering

import "time"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

// defaultReportTemplate is the built-in HTML layout used for PDF output.
// The data it binds is already formatted; the template only lays it out.
const defaultReportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 12px; color: #222; margin: 24px; }
  h1 { font-size: 20px; margin-bottom: 2px; }
  h2 { font-size: 14px; margin: 18px 0 6px; border-bottom: 1px solid #ccc; padding-bottom: 3px; }
  .meta { color: #666; font-size: 11px; margin-bottom: 16px; }
  .figures { display: flex; flex-wrap: wrap; margin-bottom: 8px; }
  .figure { border: 1px solid #ddd; border-radius: 4px; padding: 8px 14px; margin: 0 8px 8px 0; }
  .figure .label { color: #666; font-size: 10px; text-transform: uppercase; }
  .figure .value { font-size: 16px; font-weight: bold; }
  table { border-collapse: collapse; width: 100%; margin-bottom: 12px; }
  th { background: #f0f0f0; text-align: left; }
  th, td { border: 1px solid #ddd; padding: 4px 8px; }
  tr:nth-child(even) td { background: #fafafa; }
</style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="meta">
    Period: {{formatDate .Meta.PeriodStart}} &ndash; {{formatDate .Meta.PeriodEnd}}<br>
    Generated: {{formatDateTime .Meta.GeneratedAt}}{{if .Meta.GeneratedBy}} by {{.Meta.GeneratedBy}}{{end}}
  </div>

  {{if .KeyFigures}}
  <div class="figures">
    {{range .KeyFigures}}
    <div class="figure">
      <div class="label">{{.Label}}</div>
      <div class="value">{{.Value}}</div>
    </div>
    {{end}}
  </div>
  {{end}}

  {{range .Tables}}
  <h2>{{.Title}}</h2>
  <table>
    <thead>
      <tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
    </thead>
    <tbody>
      {{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
      {{end}}
    </tbody>
  </table>
  {{end}}
</body>
</html>`
