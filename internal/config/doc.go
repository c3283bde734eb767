// Package config provides configuration loading, merging, and path management
// for the ltx-actions server and CLI.
//
// # Configuration Loading
//
// Load merges configuration from several sources in priority order:
//
//  1. Global config ($XDG_CONFIG_HOME/ltx-actions/)
//  2. Project config (<directory>/.ltx-actions/)
//  3. LTX_ACTIONS_CONFIG file
//  4. LTX_ACTIONS_CONFIG_CONTENT inline JSON
//  5. Environment variables
//
// Within a directory the files actions.json, actions.jsonc, actions.yaml and
// actions.yml are read in that order, so a YAML file overrides a JSON one.
//
// # Supported Formats
//
//   - actions.json - Standard JSON configuration
//   - actions.jsonc - JSON with comments, processed using tidwall/jsonc
//   - actions.yaml / actions.yml - YAML, decoded with gopkg.in/yaml.v3
//
// # Variable Interpolation
//
// {env:VAR_NAME} placeholders in any config file expand to the value of the
// environment variable before the file is decoded.
//
// # Environment Overrides
//
//   - LTX_ACTIONS_LOG_LEVEL: logLevel
//   - LTX_ACTIONS_SESSION: session
//   - LTX_ACTIONS_STORAGE: storage.driver (file, memory, sqlite)
//   - LTX_ACTIONS_STORAGE_PATH: storage.path
//   - LTX_ACTIONS_HISTORY_SIZE: history.maxSize
//   - LTX_ACTIONS_PORT: server.port
//
// # Reloading
//
// Watch reports debounced changes to any of the files returned by Files;
// the server re-runs Load and applies the new log level when it fires.
package config
