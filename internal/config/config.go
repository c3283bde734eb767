package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// FileNames are the config file names probed in each config directory,
// lowest priority first.
var FileNames = []string{"actions.json", "actions.jsonc", "actions.yaml", "actions.yml"}

// ProjectDirName is the per-project config directory.
const ProjectDirName = ".ltx-actions"

// Environment variables read by Load.
const (
	EnvConfig        = "LTX_ACTIONS_CONFIG"
	EnvConfigContent = "LTX_ACTIONS_CONFIG_CONTENT"
	EnvLogLevel      = "LTX_ACTIONS_LOG_LEVEL"
	EnvSession       = "LTX_ACTIONS_SESSION"
	EnvStorage       = "LTX_ACTIONS_STORAGE"
	EnvStoragePath   = "LTX_ACTIONS_STORAGE_PATH"
	EnvHistorySize   = "LTX_ACTIONS_HISTORY_SIZE"
	EnvPort          = "LTX_ACTIONS_PORT"
)

// Load loads configuration from multiple sources (priority order):
// 1. Global config ($XDG_CONFIG_HOME/ltx-actions/)
// 2. Project config (<directory>/.ltx-actions/)
// 3. LTX_ACTIONS_CONFIG file
// 4. LTX_ACTIONS_CONFIG_CONTENT inline JSON
// 5. Environment variables
func Load(directory string) (*types.Config, error) {
	config := &types.Config{}

	for _, path := range Files(directory) {
		if err := loadConfigFile(path, config); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if content := os.Getenv(EnvConfigContent); content != "" {
		var inline types.Config
		if err := json.Unmarshal(jsonc.ToJSON([]byte(content)), &inline); err != nil {
			return nil, fmt.Errorf("parse %s: %w", EnvConfigContent, err)
		}
		mergeConfig(config, &inline)
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// Files returns every config file Load probes, lowest priority first.
// Files that do not exist are included; Watch uses the list as well.
func Files(directory string) []string {
	var files []string
	global := GetPaths().Config
	for _, name := range FileNames {
		files = append(files, filepath.Join(global, name))
	}
	if directory != "" {
		projectDir := filepath.Join(directory, ProjectDirName)
		for _, name := range FileNames {
			files = append(files, filepath.Join(projectDir, name))
		}
	}
	if path := os.Getenv(EnvConfig); path != "" {
		files = append(files, path)
	}
	return files
}

// loadConfigFile loads a single config file with interpolation support.
func loadConfigFile(path string, config *types.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	data = interpolate(data)

	var fileConfig types.Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fileConfig)
	default:
		// Strip JSONC comments using tidwall/jsonc
		err = json.Unmarshal(jsonc.ToJSON(data), &fileConfig)
	}
	if err != nil {
		return err
	}

	mergeConfig(config, &fileConfig)
	return nil
}

var envPattern = regexp.MustCompile(`\{env:([^}]+)\}`)

// interpolate replaces {env:VAR} placeholders.
func interpolate(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// mergeConfig merges source config into target. Set fields in source win.
func mergeConfig(target, source *types.Config) {
	if source.Schema != "" {
		target.Schema = source.Schema
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
	}
	if source.Session != "" {
		target.Session = source.Session
	}

	if source.History != nil {
		if target.History == nil {
			target.History = &types.HistoryConfig{}
		}
		if source.History.MaxSize != 0 {
			target.History.MaxSize = source.History.MaxSize
		}
	}

	if source.Storage != nil {
		if target.Storage == nil {
			target.Storage = &types.StorageConfig{}
		}
		if source.Storage.Driver != "" {
			target.Storage.Driver = source.Storage.Driver
		}
		if source.Storage.Path != "" {
			target.Storage.Path = source.Storage.Path
		}
	}

	if source.Server != nil {
		if target.Server == nil {
			target.Server = &types.ServerConfig{}
		}
		if source.Server.Port != 0 {
			target.Server.Port = source.Server.Port
		}
		if source.Server.Hostname != "" {
			target.Server.Hostname = source.Server.Hostname
		}
		if source.Server.CORS != nil {
			target.Server.CORS = source.Server.CORS
		}
	}

	if source.Host != nil {
		if target.Host == nil {
			target.Host = &types.HostConfig{}
		}
		if len(source.Host.KnownFields) > 0 {
			target.Host.KnownFields = append([]string(nil), source.Host.KnownFields...)
		}
	}

	if source.Executor != nil {
		target.Executor = &types.ExecutorConfig{
			SkipErrors: source.Executor.SkipErrors,
			Silent:     source.Executor.Silent,
		}
	}
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(config *types.Config) error {
	if level := os.Getenv(EnvLogLevel); level != "" {
		config.LogLevel = level
	}
	if session := os.Getenv(EnvSession); session != "" {
		config.Session = session
	}

	if driver := os.Getenv(EnvStorage); driver != "" {
		if config.Storage == nil {
			config.Storage = &types.StorageConfig{}
		}
		config.Storage.Driver = driver
	}
	if path := os.Getenv(EnvStoragePath); path != "" {
		if config.Storage == nil {
			config.Storage = &types.StorageConfig{}
		}
		config.Storage.Path = path
	}

	if size := os.Getenv(EnvHistorySize); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHistorySize, err)
		}
		if config.History == nil {
			config.History = &types.HistoryConfig{}
		}
		config.History.MaxSize = n
	}

	if port := os.Getenv(EnvPort); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		if config.Server == nil {
			config.Server = &types.ServerConfig{}
		}
		config.Server.Port = n
	}
	return nil
}

// Save saves the configuration to a file. The encoding follows the file
// extension: YAML for .yaml/.yml, indented JSON otherwise.
func Save(config *types.Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
