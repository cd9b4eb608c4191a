package catalog

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
)

// RenderFile loads a catalog file from disk and renders its env template
// directives. Referencing an unset variable with env fails the render so
// half-configured catalogs are caught at startup.
func RenderFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return RenderBytes(path, raw)
}

// RenderBytes renders a catalog template from raw bytes.
func RenderBytes(name string, raw []byte) ([]byte, error) {
	var missing []string
	funcs := template.FuncMap{
		"env": func(key string) string {
			value, ok := os.LookupEnv(key)
			if !ok {
				missing = append(missing, key)
			}
			return value
		},
		"envOr": func(key, def string) string {
			if value, ok := os.LookupEnv(key); ok {
				return value
			}
			return def
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
	}

	if strings.TrimSpace(name) == "" {
		name = "catalog"
	}
	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse catalog template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{}); err != nil {
		return nil, fmt.Errorf("render catalog template: %w", err)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing env vars: %s", strings.Join(missing, ", "))
	}

	return buf.Bytes(), nil
}
