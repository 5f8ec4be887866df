package handlers

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"gorm.io/datatypes"

	"github.com/shaderl/internship-service/internal/auth"
	"github.com/shaderl/internship-service/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const dateLayout = "2006-01-02"

var templateFuncs = template.FuncMap{
	"csrfField": csrfField,
	"roleTitle": func(r models.UserRole) string { return r.Title() },
	"fmtDate":   fmtDate,
}

// LoadTemplates parses every page template. Pages are addressed by file name.
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}

// StaticFiles serves the stylesheet and other assets
func StaticFiles() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

func csrfField(token string) template.HTML {
	return template.HTML(`<input type="hidden" name="` + auth.CSRFFieldName + `" value="` + template.HTMLEscapeString(token) + `">`)
}

func fmtDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return "-"
		}
		return t.Format(dateLayout)
	case *time.Time:
		if t == nil {
			return "-"
		}
		return fmtDate(*t)
	case datatypes.Date:
		return fmtDate(time.Time(t))
	case *datatypes.Date:
		if t == nil {
			return "-"
		}
		return fmtDate(time.Time(*t))
	}
	return "-"
}
