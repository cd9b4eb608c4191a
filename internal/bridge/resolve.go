package bridge

import "github.com/trackdesk/desktop-bridge/internal/action"

// Resolve matches the request against the supplied catalog snapshot and
// binds the matched command to the request.
//
// A catalog entry with an empty configuration name models a zero-config
// scope and matches requests for "Primary". Within one entry the first
// command whose system name matches wins; the scan over entries does not
// stop on a match, so a later entry with the same scope name overwrites
// an earlier binding. Entries are not expected to overlap in practice,
// but the order dependence is kept deterministic.
func (r *Request) Resolve(catalogs []action.CatalogEntry) (action.Command, error) {
	for _, entry := range catalogs {
		scope := entry.ConfigurationName
		if scope == "" {
			scope = action.PrimaryConfiguration
		}
		if scope != r.ConfigurationName {
			continue
		}
		for _, cmd := range entry.Commands {
			if cmd.SystemName() == r.CommandName {
				r.resolved = cmd
				break
			}
		}
	}

	if r.resolved == nil {
		return nil, &ResolutionError{
			ConfigurationName: r.ConfigurationName,
			CommandName:       r.CommandName,
		}
	}
	return r.resolved, nil
}
