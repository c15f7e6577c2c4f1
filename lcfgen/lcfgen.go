// This file is part of dsdecomp.
//
// dsdecomp is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// dsdecomp is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with dsdecomp.  If not, see <https://www.gnu.org/licenses/>.

// Package lcfgen renders the linker command file (lcf) that places every
// delinked module's object files back at their original ROM addresses, the
// last step before re-linking a matching binary.
package lcfgen

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/pret/dsdecomp/module"
)

var funcs = template.FuncMap{
	"hex": func(v uint32) string { return fmt.Sprintf("0x%08X", v) },
	"join": func(sep string, items []string) string { return strings.Join(items, sep) },
}

const lcfTemplate = `{{- /* generated linker command file, do not edit by hand */ -}}
MEMORY {
{{- range .Modules }}
  {{ .MemoryName }} (rx) : ORIGIN = {{ hex .BaseAddress }}, LENGTH = {{ hex .Length }}
{{- end }}
}

SECTIONS {
{{- range .Modules }}
  /* {{ .Name }} ({{ .Kind }}) */
  {{ .MemoryName }}_block {{ hex .BaseAddress }} : {
{{- range .Sections }}
    {{ .Name }} {{ hex .Address }} : { *({{ .Name }}) } LENGTH = {{ hex .Length }}
{{- end }}
  } > {{ .MemoryName }}
{{- end }}
}
`

// SectionEntry is one section placed within a module's memory region.
type SectionEntry struct {
	Name    string
	Address uint32
	Length  uint32
}

// ModuleLayout is one module's placement, the unit the template iterates.
type ModuleLayout struct {
	Name        string
	Kind        string
	MemoryName  string
	BaseAddress uint32
	Length      uint32
	Sections    []SectionEntry
}

// Data is the top-level template input.
type Data struct {
	Modules []ModuleLayout
}

// BuildData converts a module list into renderable layout data, sorted by
// base address so autoloads and overlays appear in a stable, predictable
// order regardless of slice iteration order upstream.
func BuildData(modules []*module.Module) Data {
	layouts := make([]ModuleLayout, 0, len(modules))
	for _, m := range modules {
		var sections []SectionEntry
		for _, s := range m.Sections.All() {
			sections = append(sections, SectionEntry{
				Name:    s.Name,
				Address: uint32(s.Start),
				Length:  s.Len(),
			})
		}
		layouts = append(layouts, ModuleLayout{
			Name:        m.Name,
			Kind:        m.Kind.String(),
			MemoryName:  memoryName(m),
			BaseAddress: uint32(m.BaseAddress),
			Length:      uint32(m.BssEnd()) - uint32(m.BaseAddress),
			Sections:    sections,
		})
	}
	sort.Slice(layouts, func(i, j int) bool { return layouts[i].BaseAddress < layouts[j].BaseAddress })
	return Data{Modules: layouts}
}

func memoryName(m *module.Module) string {
	switch m.Kind.Tag {
	case module.KindMain:
		return "main"
	case module.KindOverlay:
		return fmt.Sprintf("overlay%d", m.Kind.OverlayID)
	default:
		return strings.ReplaceAll(m.Name, " ", "_")
	}
}

// Generate renders the linker command file for modules to w.
func Generate(w io.Writer, modules []*module.Module) error {
	t, err := template.New("lcf").Funcs(funcs).Parse(lcfTemplate)
	if err != nil {
		return err
	}
	return t.Execute(w, BuildData(modules))
}
