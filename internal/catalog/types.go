// Package catalog loads YAML action catalogs and binds their commands to
// request entity contexts. It is a file-backed source of the catalog
// snapshots the bridge resolver consumes; discovering configurations from
// the tracking site is a separate concern and lives outside this process.
package catalog

// File is the top-level YAML catalog document.
type File struct {
	// Configurations lists configuration scopes and their commands.
	Configurations []ConfigurationConfig `yaml:"configurations"`
	// StartupHooks defines one-time warm-up commands executed on start.
	StartupHooks []HookConfig `yaml:"startup_hooks"`
}

// ConfigurationConfig declares one configuration scope.
type ConfigurationConfig struct {
	// Name is the configuration scope name; empty aliases to Primary.
	Name string `yaml:"name"`
	// Error marks the scope as failed to load; its commands are ignored.
	Error string `yaml:"error"`
	// Commands lists the commands available in this scope.
	Commands []CommandConfig `yaml:"commands"`
}

// CommandConfig declares one executable action.
type CommandConfig struct {
	// Name is the system name requests are matched against.
	Name string `yaml:"name"`
	// Title is the human-friendly label.
	Title string `yaml:"title"`
	// Kind selects the command implementation ("shell" or "http").
	Kind string `yaml:"kind"`
	// MultiSelection marks commands that accept the full selection.
	MultiSelection bool `yaml:"multi_selection"`
	// Timeout bounds one execution.
	Timeout string `yaml:"timeout"`
	// Command is the executable or shell command (kind shell).
	Command string `yaml:"command"`
	// Args contains command arguments (kind shell).
	Args []string `yaml:"args"`
	// Env adds environment variables for execution (kind shell).
	Env map[string]string `yaml:"env"`
	// URL is the toolkit service endpoint (kind http).
	URL string `yaml:"url"`
	// Headers adds HTTP headers (kind http).
	Headers map[string]string `yaml:"headers"`
}

// HookConfig defines a startup hook command.
type HookConfig struct {
	// Command is the startup command to run.
	Command string `yaml:"command"`
	// Args are optional arguments.
	Args []string `yaml:"args"`
	// Env adds environment variables for the hook.
	Env map[string]string `yaml:"env"`
	// Timeout controls hook execution duration.
	Timeout string `yaml:"timeout"`
}

// Command kinds.
const (
	KindShell = "shell"
	KindHTTP  = "http"
)
