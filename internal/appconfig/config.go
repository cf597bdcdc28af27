// Package appconfig loads and persists the editor/theme configuration
// document (config.json): a separate, simpler concern from the process
// configuration in internal/config (which goes through viper). This one is
// plain encoding/json, validated against a fixed JSON Schema, and
// write-through: the first time no file is found, defaults are constructed
// and written back to disk before returning, matching the original Tauri
// backend's EditorConfig::load behavior per SPEC_FULL.md §10.3/§12.
package appconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"

	"github.com/TodayNightt/branchy-text-editor/internal/editorerr"
)

// fileName is the persisted config document's name inside the app's data
// directory.
const fileName = "config.json"

// defaultBackground is the stock editor-wide background color applied when
// no config.json exists yet.
const defaultBackground = "#1e1e1e"

// defaultTheme is the stock per-language theme name applied when no
// config.json exists yet.
const defaultTheme = "default-dark"

// LanguageThemes is the per-language theme map, matching the original
// backend's ThemeConfig shape: a mandatory default plus optional overrides.
type LanguageThemes struct {
	Default    string `json:"default"`
	JavaScript string `json:"javascript,omitempty"`
	Rust       string `json:"rust,omitempty"`
	Java       string `json:"java,omitempty"`
	HTML       string `json:"html,omitempty"`
	CSS        string `json:"css,omitempty"`
	Python     string `json:"python,omitempty"`
	Ruby       string `json:"ruby,omitempty"`
}

// EditorTheme carries the one editor-wide color the original backend
// persists outside the per-language theme map.
type EditorTheme struct {
	Background string `json:"background"`
}

// Document is the full persisted config.json shape.
type Document struct {
	Language LanguageThemes `json:"language"`
	Editor   EditorTheme    `json:"editor"`
}

func defaultDocument() Document {
	return Document{
		Language: LanguageThemes{Default: defaultTheme},
		Editor:   EditorTheme{Background: defaultBackground},
	}
}

// schema is the fixed JSON Schema config.json must validate against,
// matching Document's shape. A hand-edited config file with the wrong
// shape is rejected here with a SerdeError instead of reaching a
// downstream nil-map panic.
const schema = `{
  "type": "object",
  "required": ["language", "editor"],
  "properties": {
    "language": {
      "type": "object",
      "required": ["default"],
      "properties": {
        "default": {"type": "string"},
        "javascript": {"type": "string"},
        "rust": {"type": "string"},
        "java": {"type": "string"},
        "html": {"type": "string"},
        "css": {"type": "string"},
        "python": {"type": "string"},
        "ruby": {"type": "string"}
      }
    },
    "editor": {
      "type": "object",
      "required": ["background"],
      "properties": {
        "background": {"type": "string"}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(schema)

// Load reads dir/config.json, validating it against schema. If the file is
// absent, a default Document is constructed and written back to dir before
// being returned, matching the original EditorConfig::load's write-through
// behavior.
func Load(dir string) (Document, error) {
	path := filepath.Join(dir, fileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		doc := defaultDocument()

		if writeErr := save(path, doc); writeErr != nil {
			return Document{}, writeErr
		}

		return doc, nil
	}

	if err != nil {
		return Document{}, editorerr.IO("read config.json", err)
	}

	if err := validate(data); err != nil {
		return Document{}, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, editorerr.Serde("decode config.json", err)
	}

	return doc, nil
}

// Save validates and writes doc to dir/config.json.
func Save(dir string, doc Document) error {
	return save(filepath.Join(dir, fileName), doc)
}

func save(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return editorerr.Serde("encode config.json", err)
	}

	if err := validate(data); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd
		return editorerr.IO("create config directory", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:mnd
		return editorerr.IO("write config.json", err)
	}

	return nil
}

func validate(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return editorerr.Serde("validate config.json schema", err)
	}

	if !result.Valid() {
		return editorerr.Serde(fmt.Sprintf("config.json does not match schema: %v", result.Errors()), nil)
	}

	return nil
}
