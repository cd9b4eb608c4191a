package catalog

import (
	"context"
	"log/slog"

	"github.com/trackdesk/desktop-bridge/internal/action"
)

// Provider builds catalog snapshots from a loaded catalog file. Snapshots
// bind each command to the requesting entity context so shell and HTTP
// command bodies can interpolate entity and project fields.
type Provider struct {
	file   *File
	logger *slog.Logger
}

// NewProvider returns a Provider over a validated catalog file.
func NewProvider(file *File, logger *slog.Logger) *Provider {
	return &Provider{file: file, logger: logger}
}

// Snapshot implements action.SnapshotProvider.
func (p *Provider) Snapshot(_ context.Context, target action.Target) ([]action.CatalogEntry, error) {
	entries := make([]action.CatalogEntry, 0, len(p.file.Configurations))
	for _, cfg := range p.file.Configurations {
		entry := action.CatalogEntry{
			ConfigurationName: cfg.Name,
			Error:             cfg.Error,
		}
		if cfg.Error == "" {
			entry.Commands = make([]action.Command, 0, len(cfg.Commands))
			for _, def := range cfg.Commands {
				entry.Commands = append(entry.Commands, bind(def, target))
			}
		} else if p.logger != nil {
			p.logger.Warn("configuration carries load error",
				"configuration", cfg.Name,
				"error", cfg.Error,
			)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func bind(def CommandConfig, target action.Target) action.Command {
	if def.Kind == KindHTTP {
		return httpCommand{def: def, target: target}
	}
	return shellCommand{def: def, target: target}
}
