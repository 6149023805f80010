// Package render turns an allocated pod view into per-device configuration
// text and a Graphviz cabling diagram. Rendering is pure: identical views
// produce byte-identical output.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/servak/fabric-manager/internal/clos"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer renders device configurations from embedded templates
type Renderer struct {
	templates *template.Template
}

// New parses the embedded templates
func New() (*Renderer, error) {
	funcs := template.FuncMap{
		// host strips the prefix length from an address like 10.0.0.1/32
		"host": func(address string) string {
			host, _, _ := strings.Cut(address, "/")
			return host
		},
		// ifd returns the physical interface of a unit name like et-0/0/1.0
		"ifd": func(unitName string) string {
			ifd, _, _ := strings.Cut(unitName, ".")
			return ifd
		},
		// unit returns the unit number of a unit name like et-0/0/1.0
		"unit": func(unitName string) string {
			_, unit, _ := strings.Cut(unitName, ".")
			return unit
		},
	}

	templates, err := template.New("render").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &Renderer{templates: templates}, nil
}

// RenderDevice renders the configuration text of one device
func (r *Renderer) RenderDevice(view *clos.DeviceView) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "device.conf.tmpl", view); err != nil {
		return nil, fmt.Errorf("rendering device %s: %w", view.Device.Name, err)
	}
	return buf.Bytes(), nil
}

// RenderCabling renders the pod's cabling diagram in DOT format
func (r *Renderer) RenderCabling(view *clos.PodView) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "cabling.dot.tmpl", view); err != nil {
		return nil, fmt.Errorf("rendering cabling for %s: %w", view.Pod.Name, err)
	}
	return buf.Bytes(), nil
}
