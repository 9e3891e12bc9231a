package models

import (
	"encoding/json"
	"fmt"
)

// Module entry type tags.
const (
	ModuleEntryBuiltinPanel    = "builtin_panel"
	ModuleEntryMarkdown        = "markdown"
	ModuleEntryStaticHTML      = "static_html"
	ModuleEntryExternalProcess = "external_process"
)

// ModuleEntry is the closed set of ways a module can be opened.
// Implementations: BuiltinPanelEntry, MarkdownEntry, StaticHTMLEntry, ExternalProcessEntry.
type ModuleEntry interface {
	EntryType() string
	moduleEntry()
}

// BuiltinPanelEntry opens a panel compiled into the shell.
type BuiltinPanelEntry struct {
	Target string `json:"target"`
}

// MarkdownEntry renders a markdown document from the module folder.
type MarkdownEntry struct {
	Path string `json:"path"`
}

// StaticHTMLEntry serves a static HTML page from the module folder.
type StaticHTMLEntry struct {
	Path string `json:"path"`
}

// ExternalProcessEntry launches a helper program.
type ExternalProcessEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

func (BuiltinPanelEntry) EntryType() string    { return ModuleEntryBuiltinPanel }
func (MarkdownEntry) EntryType() string        { return ModuleEntryMarkdown }
func (StaticHTMLEntry) EntryType() string      { return ModuleEntryStaticHTML }
func (ExternalProcessEntry) EntryType() string { return ModuleEntryExternalProcess }

func (BuiltinPanelEntry) moduleEntry()    {}
func (MarkdownEntry) moduleEntry()        {}
func (StaticHTMLEntry) moduleEntry()      {}
func (ExternalProcessEntry) moduleEntry() {}

// DefaultModuleRoles is used when a manifest omits roles.
var DefaultModuleRoles = []string{"teacher", "student"}

// ModuleManifest describes a module folder's module.json.
type ModuleManifest struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	Version     *string     `json:"version"`
	Author      *string     `json:"author"`
	Roles       []string    `json:"roles"`
	Entry       ModuleEntry `json:"entry"`
	Icon        *string     `json:"icon"`
	Permissions []string    `json:"permissions"`
}

type moduleManifestAlias ModuleManifest

type moduleManifestWire struct {
	moduleManifestAlias
	Entry json.RawMessage `json:"entry"`
}

// MarshalJSON writes the entry with its "type" tag inlined.
func (m ModuleManifest) MarshalJSON() ([]byte, error) {
	entry, err := MarshalModuleEntry(m.Entry)
	if err != nil {
		return nil, err
	}
	return json.Marshal(moduleManifestWire{moduleManifestAlias: moduleManifestAlias(m), Entry: entry})
}

// UnmarshalJSON decodes the manifest and its tagged entry.
func (m *ModuleManifest) UnmarshalJSON(data []byte) error {
	var wire moduleManifestWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if len(wire.Entry) == 0 {
		return fmt.Errorf("module %q: entry is required", wire.ID)
	}
	entry, err := UnmarshalModuleEntry(wire.Entry)
	if err != nil {
		return fmt.Errorf("module %q: %w", wire.ID, err)
	}
	*m = ModuleManifest(wire.moduleManifestAlias)
	m.Entry = entry
	if m.Roles == nil {
		m.Roles = append([]string(nil), DefaultModuleRoles...)
	}
	if m.Permissions == nil {
		m.Permissions = []string{}
	}
	return nil
}

// MarshalModuleEntry encodes an entry as an internally tagged object.
func MarshalModuleEntry(entry ModuleEntry) (json.RawMessage, error) {
	var body interface{}
	switch e := entry.(type) {
	case BuiltinPanelEntry:
		body = struct {
			Type string `json:"type"`
			BuiltinPanelEntry
		}{e.EntryType(), e}
	case MarkdownEntry:
		body = struct {
			Type string `json:"type"`
			MarkdownEntry
		}{e.EntryType(), e}
	case StaticHTMLEntry:
		body = struct {
			Type string `json:"type"`
			StaticHTMLEntry
		}{e.EntryType(), e}
	case ExternalProcessEntry:
		if e.Args == nil {
			e.Args = []string{}
		}
		body = struct {
			Type string `json:"type"`
			ExternalProcessEntry
		}{e.EntryType(), e}
	case nil:
		return nil, fmt.Errorf("module entry is nil")
	default:
		return nil, fmt.Errorf("unsupported module entry %T", entry)
	}
	return json.Marshal(body)
}

// UnmarshalModuleEntry decodes an internally tagged entry; unknown tags are rejected.
func UnmarshalModuleEntry(data []byte) (ModuleEntry, error) {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, err
	}

	switch tag.Type {
	case ModuleEntryBuiltinPanel:
		var e BuiltinPanelEntry
		err := json.Unmarshal(data, &e)
		return e, err
	case ModuleEntryMarkdown:
		var e MarkdownEntry
		err := json.Unmarshal(data, &e)
		return e, err
	case ModuleEntryStaticHTML:
		var e StaticHTMLEntry
		err := json.Unmarshal(data, &e)
		return e, err
	case ModuleEntryExternalProcess:
		var e ExternalProcessEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		if e.Args == nil {
			e.Args = []string{}
		}
		return e, nil
	case "":
		return nil, fmt.Errorf("module entry type is required")
	default:
		return nil, fmt.Errorf("unknown module entry type %q", tag.Type)
	}
}

// LoadedModule pairs a manifest with the folder it was read from.
type LoadedModule struct {
	Manifest ModuleManifest
	Folder   string
}
