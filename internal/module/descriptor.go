// Package module implements the Module Graph / Import Resolver stage
// (spec.md §4.4): classifying import paths, building the descriptor JSON
// persisted alongside compiled output, and detecting import cycles before
// the lowering engine ever runs.
package module

import "encoding/json"

// ExportKind tags one entry of a Module descriptor's "_" discriminator
// (Module / ModuleFile / ModuleLibrary, spec.md §3).
type ExportKind string

const (
	KindModule  ExportKind = "Module"
	KindFile    ExportKind = "ModuleFile"
	KindLibrary ExportKind = "ModuleLibrary"
)

// NamedExportKind classifies one entry of a FileExport's own exports list
// (spec.md §3: `exports: [{name, kind}]`). The accept list is extensible at
// runtime via RegisterNamedExportKind rather than a closed enum: only
// "component" and "element" are named in spec.md, but a third value such as
// "instance" would be a natural addition a host could register without
// breaking descriptor round-tripping (spec.md open question, resolved
// extensible — see DESIGN.md).
type NamedExportKind string

const (
	KindComponent NamedExportKind = "component"
	KindElement   NamedExportKind = "element"
)

var validNamedKinds = map[NamedExportKind]bool{
	KindComponent: true,
	KindElement:   true,
}

// RegisterNamedExportKind admits a new per-export kind string as valid, for
// hosts that extend the descriptor format.
func RegisterNamedExportKind(k NamedExportKind) { validNamedKinds[k] = true }

// IsValidNamedExportKind reports whether k has been registered (built in, or
// via RegisterNamedExportKind).
func IsValidNamedExportKind(k NamedExportKind) bool { return validNamedKinds[k] }

// NamedExport is one `{name, kind}` entry of a FileExport's exports list.
type NamedExport struct {
	Name string          `json:"name"`
	Kind NamedExportKind `json:"kind"`
}

// Dependency is one `{importUri}` entry of a FileExport's dependencies list
// (spec.md §3).
type Dependency struct {
	ImportURI string `json:"importUri"`
}

// Module is the root descriptor for one compiled module: its public URI and
// the exports reachable through it (spec.md §4.4).
type Module struct {
	Kind    ExportKind `json:"_"`
	URI     string     `json:"uri"`
	Exports []Export   `json:"exports"`
}

// Export is implemented by FileExport and LibraryExport — the two concrete
// export kinds a Module can list.
type Export interface {
	exportKind() ExportKind
}

// FileExport describes one compiled source file's contribution to the
// module: what it exports, and which other files (by import URI) it depends
// on.
type FileExport struct {
	Kind         ExportKind   `json:"_"`
	FileName     string       `json:"fileName"`
	Exports      []NamedExport `json:"exports"`
	Dependencies []Dependency  `json:"dependencies"`
}

func (*FileExport) exportKind() ExportKind { return KindFile }

// AddExport appends a {name, kind} entry.
func (fe *FileExport) AddExport(name string, kind NamedExportKind) {
	fe.Exports = append(fe.Exports, NamedExport{Name: name, Kind: kind})
}

// AddDependency appends a {importUri} entry.
func (fe *FileExport) AddDependency(importURI string) {
	fe.Dependencies = append(fe.Dependencies, Dependency{ImportURI: importURI})
}

// LibraryExport names a native/host library re-exported by the module
// unchanged. It carries no further structure — resolving it is the host's
// job, not the compiler's (spec.md open question on ModuleLibrary, resolved
// as a no-op passthrough; see SPEC_FULL.md §3.2).
type LibraryExport struct {
	Kind ExportKind `json:"_"`
	Name string     `json:"name"`
}

func (*LibraryExport) exportKind() ExportKind { return KindLibrary }

// NewModule returns an empty descriptor for the given module URI.
func NewModule(uri string) *Module {
	return &Module{Kind: KindModule, URI: uri}
}

// AddFileExport appends a FileExport and returns it for further mutation.
func (m *Module) AddFileExport(fileName string) *FileExport {
	fe := &FileExport{Kind: KindFile, FileName: fileName}
	m.Exports = append(m.Exports, fe)
	return fe
}

// AddLibraryExport appends a LibraryExport.
func (m *Module) AddLibraryExport(name string) *LibraryExport {
	le := &LibraryExport{Kind: KindLibrary, Name: name}
	m.Exports = append(m.Exports, le)
	return le
}

// marshaledExport is the wire shape used only for (de)serialization, since
// Export is an interface and encoding/json needs a concrete type to decode
// into; the "_" discriminator picks the right Go type on the way back in.
type marshaledExport struct {
	Kind         ExportKind    `json:"_"`
	FileName     string        `json:"fileName,omitempty"`
	Exports      []NamedExport `json:"exports,omitempty"`
	Dependencies []Dependency  `json:"dependencies,omitempty"`
	Name         string        `json:"name,omitempty"`
}

// MarshalJSON flattens Module.Exports through marshaledExport so each
// element round-trips its own "_" discriminator.
func (m Module) MarshalJSON() ([]byte, error) {
	type alias struct {
		Kind    ExportKind        `json:"_"`
		URI     string            `json:"uri"`
		Exports []marshaledExport `json:"exports"`
	}
	a := alias{Kind: KindModule, URI: m.URI}
	for _, e := range m.Exports {
		switch v := e.(type) {
		case *FileExport:
			a.Exports = append(a.Exports, marshaledExport{
				Kind: KindFile, FileName: v.FileName, Exports: v.Exports, Dependencies: v.Dependencies,
			})
		case *LibraryExport:
			a.Exports = append(a.Exports, marshaledExport{Kind: KindLibrary, Name: v.Name})
		}
	}
	return json.Marshal(a)
}

// UnmarshalJSON reconstructs Module.Exports, dispatching each element to its
// concrete Go type by the "_" discriminator. An unrecognized kind is skipped
// rather than failing the whole descriptor, since forward-compatible hosts
// may add kinds this build doesn't model a struct for yet.
func (m *Module) UnmarshalJSON(data []byte) error {
	type alias struct {
		Kind    ExportKind        `json:"_"`
		URI     string            `json:"uri"`
		Exports []marshaledExport `json:"exports"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	m.Kind = KindModule
	m.URI = a.URI
	m.Exports = nil
	for _, me := range a.Exports {
		switch me.Kind {
		case KindFile:
			m.Exports = append(m.Exports, &FileExport{
				Kind: KindFile, FileName: me.FileName, Exports: me.Exports, Dependencies: me.Dependencies,
			})
		case KindLibrary:
			m.Exports = append(m.Exports, &LibraryExport{Kind: KindLibrary, Name: me.Name})
		}
	}
	return nil
}
