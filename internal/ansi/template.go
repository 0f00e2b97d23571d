package ansi

import (
	"bytes"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"nodebbs/internal/app"
)

// TemplateData holds the data available to ANSI/art templates.
type TemplateData struct {
	BoardName       string
	PrettyBoardName string
	Description     string
	Hostname        string
	Website         string
	Version         string
	Custom          map[string]interface{}
}

// NewTemplateData fills in the board details from the loaded config.
func NewTemplateData() *TemplateData {
	data := &TemplateData{
		Version: app.Version,
		Custom:  make(map[string]interface{}),
	}
	if cfg := app.Config; cfg != nil {
		data.BoardName = cfg.General.BoardName
		data.PrettyBoardName = cfg.General.PrettyBoardName
		data.Description = cfg.General.Description
		data.Hostname = cfg.General.Hostname
		data.Website = cfg.General.Website
	}
	return data
}

// RenderTemplate executes data as a text/template with the Sprig functions.
// extra ends up under .Custom. Art without any "{{" is returned as is, since
// CP437 art can contain byte pairs the parser would trip over.
func RenderTemplate(data []byte, extra map[string]interface{}) ([]byte, error) {
	if !bytes.Contains(data, []byte("{{")) {
		return data, nil
	}

	tmplData := NewTemplateData()
	for k, v := range extra {
		tmplData.Custom[k] = v
	}

	tmpl, err := template.New("ansi").Funcs(sprig.TxtFuncMap()).Parse(string(data))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, tmplData); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
