package catalog

import (
	"fmt"
	"strings"
	"time"

	"go.yaml.in/yaml/v4"
)

// Load parses YAML bytes into a File and validates it.
func Load(data []byte) (*File, error) {
	var file File
	if err := yaml.Load(data, &file, yaml.WithKnownFields()); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	if err := Validate(&file); err != nil {
		return nil, err
	}
	return &file, nil
}

// LoadFile reads, renders and parses a catalog file from disk.
func LoadFile(path string) (*File, error) {
	rendered, err := RenderFile(path)
	if err != nil {
		return nil, err
	}
	return Load(rendered)
}

// Validate applies defaults and verifies required fields.
func Validate(file *File) error {
	if file == nil {
		return fmt.Errorf("catalog is nil")
	}
	if len(file.Configurations) == 0 {
		return fmt.Errorf("catalog declares no configurations")
	}

	for i, cfg := range file.Configurations {
		names := map[string]struct{}{}
		for j, cmd := range cfg.Commands {
			if strings.TrimSpace(cmd.Name) == "" {
				return fmt.Errorf("configurations[%d].commands[%d].name is required", i, j)
			}
			if _, exists := names[cmd.Name]; exists {
				return fmt.Errorf("configurations[%d]: duplicate command name: %s", i, cmd.Name)
			}
			names[cmd.Name] = struct{}{}

			kind := strings.ToLower(strings.TrimSpace(cmd.Kind))
			if kind == "" {
				kind = KindShell
			}
			file.Configurations[i].Commands[j].Kind = kind
			switch kind {
			case KindShell:
				if strings.TrimSpace(cmd.Command) == "" {
					return fmt.Errorf("configurations[%d].commands[%d].command is required", i, j)
				}
			case KindHTTP:
				if strings.TrimSpace(cmd.URL) == "" {
					return fmt.Errorf("configurations[%d].commands[%d].url is required", i, j)
				}
			default:
				return fmt.Errorf("configurations[%d].commands[%d]: unknown kind: %s", i, j, cmd.Kind)
			}

			if strings.TrimSpace(cmd.Timeout) != "" {
				if _, err := time.ParseDuration(cmd.Timeout); err != nil {
					return fmt.Errorf("configurations[%d].commands[%d].timeout is invalid: %w", i, j, err)
				}
			}
		}
	}

	for i, hook := range file.StartupHooks {
		if strings.TrimSpace(hook.Command) == "" {
			return fmt.Errorf("startup_hooks[%d].command is required", i)
		}
	}

	return nil
}
