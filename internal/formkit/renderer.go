package formkit

import (
	"fmt"
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/oneday-labs/intake-api/internal/models"
)

// formTemplate produces one labeled input per descriptor followed by the
// four fixed trailing elements: image preview, progress bar, error region
// and submit control. Executing it replaces prior contents entirely.
const formTemplate = `{{range .Fields}}<div class="inputbox">
{{if eq .Type "file"}}<input type="file" id="{{.Name}}" name="{{.Name}}" accept="image/*" data-preview="imagePreview">
{{else if eq .Type "select"}}<select id="{{.Name}}" name="{{.Name}}"{{if .Required}} required{{end}}>
{{range .Options}}<option value="{{.}}">{{.}}</option>
{{end}}</select>
{{else}}<input type="{{.Type}}" id="{{.Name}}" name="{{.Name}}"{{if .Required}} required{{end}}>
{{end}}<span>{{.Label}}</span>
</div>
{{end}}<div class="image-preview"><img id="imagePreview" style="display:none" alt=""></div>
<div class="progress-container" id="progressContainer"><div class="progress-bar" id="progressBar"></div></div>
<div class="error-container" id="errorContainer"></div>
<input type="submit" value="Submit" class="sub" id="submit">
`

type fieldView struct {
	Name     string
	Type     models.FieldType
	Required bool
	Options  []string
	Label    string
}

// Renderer builds intake form markup from an ordered field list.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the form template once.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("form").Parse(formTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse form template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// RenderForm produces the inner form markup for the given descriptors.
// An empty descriptor list still yields the fixed trailing elements.
func (r *Renderer) RenderForm(fields []models.FieldDescriptor) (template.HTML, error) {
	views := make([]fieldView, 0, len(fields))
	for _, f := range fields {
		views = append(views, fieldView{
			Name:     f.Name,
			Type:     f.Type,
			Required: f.Required,
			Options:  f.Options,
			Label:    Capitalize(f.Name),
		})
	}

	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, struct{ Fields []fieldView }{Fields: views}); err != nil {
		return "", fmt.Errorf("render form: %w", err)
	}
	return template.HTML(sb.String()), nil
}

// Capitalize upper-cases the first rune of a field name for display.
func Capitalize(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
