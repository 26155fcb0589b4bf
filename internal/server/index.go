package server

import (
	"html/template"
	"net/http"
	"slices"

	"github.com/rewired-gh/vgdash/internal/dashboard"
	"github.com/rewired-gh/vgdash/internal/logger"
	"github.com/rewired-gh/vgdash/internal/models"
	"github.com/rewired-gh/vgdash/internal/render"
)

// orderLevels is how many hierarchy levels the sidebar lets the user pick.
const orderLevels = 3

type indexGenre struct {
	Name    string
	Checked bool
}

type indexLevel struct {
	Selected string
}

type indexData struct {
	Title      string
	Genres     []indexGenre
	YearMin    int
	YearMax    int
	DataMin    int
	DataMax    int
	Dimensions []string
	Levels     []indexLevel
	Summary    string
	Advisories []string
	ChartsURL  string
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; display: flex; font-family: sans-serif; }
aside { width: 260px; padding: 16px; background: #f4f4f6; height: 100vh; overflow-y: auto; box-sizing: border-box; }
main { flex: 1; display: flex; flex-direction: column; height: 100vh; }
.info { padding: 8px 16px; }
.advisory { color: #a15c00; }
iframe { flex: 1; border: 0; width: 100%; }
</style>
</head>
<body>
<aside>
<form method="get" action="/">
<input type="hidden" name="applied" value="1">
<h3>Genres</h3>
{{range .Genres}}<label><input type="checkbox" name="genre" value="{{.Name}}"{{if .Checked}} checked{{end}}> {{.Name}}</label><br>
{{end}}
<h3>Years</h3>
<input type="number" name="year_min" min="{{.DataMin}}" max="{{.DataMax}}" value="{{.YearMin}}">
<input type="number" name="year_max" min="{{.DataMin}}" max="{{.DataMax}}" value="{{.YearMax}}">
<h3>Hierarchy</h3>
{{range .Levels}}{{$sel := .Selected}}<select name="order">
<option value=""></option>
{{range $.Dimensions}}<option value="{{.}}"{{if eq . $sel}} selected{{end}}>{{.}}</option>
{{end}}</select><br>
{{end}}
<p><button type="submit">Apply</button></p>
</form>
</aside>
<main>
<div class="info">
<p>{{.Summary}}</p>
{{range .Advisories}}<p class="advisory">{{.}}</p>
{{end}}</div>
<iframe src="{{.ChartsURL}}"></iframe>
</main>
</body>
</html>
`))

// HandleIndex handles GET /, the sidebar with the chart page embedded.
func (s *Server) HandleIndex(w http.ResponseWriter, r *http.Request) {
	req, err := s.request(r)
	if err != nil {
		writeError(w, err)
		return
	}
	choices, err := s.svc.Options(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	sel, err := s.svc.Select(r.Context(), req.Spec)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, newIndexData(choices, req, sel)); err != nil {
		logger.Error("Failed to render index: %v", err)
	}
}

func newIndexData(choices *dashboard.Choices, req dashboard.Request, sel *dashboard.Selection) indexData {
	data := indexData{
		Title:      render.PageTitle,
		YearMin:    req.Spec.YearMin,
		YearMax:    req.Spec.YearMax,
		DataMin:    choices.YearMin,
		DataMax:    choices.YearMax,
		Summary:    sel.Summary,
		Advisories: sel.Advisories,
		ChartsURL:  "/charts?" + Query(req).Encode(),
	}
	for _, g := range choices.Genres {
		data.Genres = append(data.Genres, indexGenre{Name: g, Checked: slices.Contains(req.Spec.Genres, g)})
	}
	for _, d := range []models.Dimension{models.DimGenre, models.DimPlatform, models.DimPublisher, models.DimYear} {
		data.Dimensions = append(data.Dimensions, d.String())
	}
	for i := range orderLevels {
		var lvl indexLevel
		if i < len(req.Order) {
			lvl.Selected = req.Order[i].String()
		}
		data.Levels = append(data.Levels, lvl)
	}
	return data
}
