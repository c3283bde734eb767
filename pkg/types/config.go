package types

// Config represents the action protocol configuration.
// It is loaded from actions.json / actions.jsonc / actions.yaml files.
type Config struct {
	// Schema reference (for editor support)
	Schema string `json:"$schema,omitempty" yaml:"$schema,omitempty"`

	// Minimum log level: DEBUG|INFO|WARN|ERROR
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	// Session identifier used to scope persisted history.
	Session string `json:"session,omitempty" yaml:"session,omitempty"`

	History  *HistoryConfig  `json:"history,omitempty" yaml:"history,omitempty"`
	Storage  *StorageConfig  `json:"storage,omitempty" yaml:"storage,omitempty"`
	Server   *ServerConfig   `json:"server,omitempty" yaml:"server,omitempty"`
	Host     *HostConfig     `json:"host,omitempty" yaml:"host,omitempty"`
	Executor *ExecutorConfig `json:"executor,omitempty" yaml:"executor,omitempty"`
}

// HistoryConfig configures the undo/redo log.
type HistoryConfig struct {
	MaxSize int `json:"maxSize,omitempty" yaml:"maxSize,omitempty"`
}

// StorageConfig selects the key-value backend used for session persistence.
type StorageConfig struct {
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"` // "file"|"memory"|"sqlite"
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	Hostname string `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	CORS     *bool  `json:"cors,omitempty" yaml:"cors,omitempty"`
}

// HostConfig configures the reference UI host.
type HostConfig struct {
	// KnownFields restricts form fields to this list when non-empty.
	KnownFields []string `json:"knownFields,omitempty" yaml:"knownFields,omitempty"`
}

// ExecutorConfig holds default execution options.
type ExecutorConfig struct {
	SkipErrors bool `json:"skipErrors,omitempty" yaml:"skipErrors,omitempty"`
	Silent     bool `json:"silent,omitempty" yaml:"silent,omitempty"`
}

// HistoryMaxSize returns the configured history bound, 0 when unset.
func (c *Config) HistoryMaxSize() int {
	if c == nil || c.History == nil {
		return 0
	}
	return c.History.MaxSize
}

// CORSEnabled reports whether CORS middleware should be installed.
// Defaults to true.
func (c *Config) CORSEnabled() bool {
	if c == nil || c.Server == nil || c.Server.CORS == nil {
		return true
	}
	return *c.Server.CORS
}
