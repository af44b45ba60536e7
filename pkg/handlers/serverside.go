package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/spencer-p/skydash/pkg/almanac"
	"github.com/spencer-p/skydash/pkg/timetricks"
	"github.com/spencer-p/skydash/pkg/viewing"
)

//go:embed static
var content embed.FS

var indexTemplate = template.Must(template.New("index.template.html").Funcs(template.FuncMap{
	"clock":     clock,
	"percent":   percent,
	"magnitude": magnitude,
}).ParseFS(content, "static/index.template.html"))

type TemplateInput struct {
	Site     string
	Date     string
	Light    almanac.Light
	PrevDate string
	NextDate string
	Bodies   []PresentationElement
}

type PresentationElement struct {
	Report  *almanac.Report
	Windows []viewing.Window
	Chart   template.HTML
}

func clock(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.Format("15:04")
}

func percent(fraction float64) string {
	return fmt.Sprintf("%.0f%%", fraction*100)
}

func magnitude(m *float64) string {
	if m == nil {
		return ""
	}
	return fmt.Sprintf("magnitude %+.1f", *m)
}

// renderIndex renders a page with every body's report, chart and viewing
// windows on the server.
func (s *Server) renderIndex(q *query) (*response, error) {
	light, err := q.alm.Light(q.at)
	if err != nil {
		return nil, err
	}
	tinput := TemplateInput{
		Site:     q.site.Name,
		Date:     timetricks.Day(q.at, q.now),
		Light:    light,
		PrevDate: q.at.AddDate(0, 0, -1).Format("2006-01-02"),
		NextDate: q.at.AddDate(0, 0, 1).Format("2006-01-02"),
	}

	for _, b := range q.eph.Bodies() {
		report, err := s.report(q, b)
		if err != nil {
			return nil, err
		}
		windows, err := s.windows(q, b)
		if err != nil {
			return nil, err
		}
		for i := range windows {
			windows[i].UpdatePrettyTime(q.now)
		}
		svg, err := s.chart(q, b)
		if err != nil {
			return nil, err
		}
		tinput.Bodies = append(tinput.Bodies, PresentationElement{
			Report:  report,
			Windows: windows,
			Chart:   template.HTML(svg),
		})
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, tinput); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return &response{"text/html", buf.Bytes()}, nil
}
