package server

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"tcg-nakama/web"
)

// Renderer executes the embedded HTML templates by file name.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	t, err := template.New("").Funcs(templateFuncs).ParseFS(
		web.Templates,
		"templates/*.html",
		"templates/partials/*.html",
		"templates/admin/*.html",
	)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

var templateFuncs = template.FuncMap{
	"yen": FormatYen,
	"inc": func(i int) int { return i + 1 },
	"dec": func(i int) int { return i - 1 },
	"nonneg": func(v *float64) bool {
		return v != nil && *v >= 0
	},
	"now": time.Now,
}

// FormatYen renders a JPY amount with thousands separators, e.g. ¥3,750,000.
// Prices come in whole yen; fractions are rounded away.
func FormatYen(d decimal.Decimal) string {
	raw := strconv.FormatInt(d.Round(0).IntPart(), 10)

	negative := false
	if len(raw) > 0 && raw[0] == '-' {
		negative = true
		raw = raw[1:]
	}

	var grouped []byte
	for i, ch := range []byte(raw) {
		if i > 0 && (len(raw)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, ch)
	}

	if negative {
		return "-¥" + string(grouped)
	}
	return "¥" + string(grouped)
}
