// Package config handles the configuration directory and settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "taskstream"

	// ConfigFile is the optional settings file in the config directory.
	ConfigFile = "config.yml"

	// EnvFile is the dotenv file read from the working and config directories.
	EnvFile = ".env"

	// OAuthClientFile is the OAuth client credentials filename (googletasks backend).
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename (googletasks backend).
	TokenFile = "token.json"
)

// Backends.
const (
	BackendREST        = "rest"
	BackendGoogleTasks = "googletasks"
)

// Defaults.
const (
	DefaultAPIEndpoint = "http://localhost:3000"
	DefaultTaskList    = "@default"
	DefaultTimeout     = 5 * time.Second
	DefaultListenAddr  = ":3000"

	// MinTimeout is the shortest request timeout accepted.
	MinTimeout = time.Millisecond
)

// Setting keys, as used in config.yml. The environment variable for a key is
// TASKSTREAM_ followed by the upper-cased key.
const (
	KeyAPIEndpoint = "api_endpoint"
	KeyBackend     = "backend"
	KeyTaskList    = "task_list"
	KeyTimeout     = "timeout"
	KeyListenAddr  = "listen_addr"
)

// legacyEndpointVars are read when TASKSTREAM_API_ENDPOINT is unset.
var legacyEndpointVars = []string{"REACT_APP_API_ENDPOINT", "REACT_APP_BACKEND_URL"}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// APIEndpoint is the base URL of the remote task store.
	APIEndpoint string

	// Backend selects the remote implementation: "rest" or "googletasks".
	Backend string

	// TaskList is the Google Tasks list ID used by the googletasks backend.
	TaskList string

	// Timeout bounds each remote request.
	Timeout time.Duration

	// ListenAddr is where the reference server listens.
	ListenAddr string
}

// New creates a Config for the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskstream or $HOME/.config/taskstream.
//
// Settings are resolved from defaults, then config.yml in the directory, then
// the environment (after loading .env files, which never override variables
// already set).
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	if err := loadEnvFiles(EnvFile, filepath.Join(dir, EnvFile)); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault(KeyAPIEndpoint, DefaultAPIEndpoint)
	v.SetDefault(KeyBackend, BackendREST)
	v.SetDefault(KeyTaskList, DefaultTaskList)
	v.SetDefault(KeyTimeout, DefaultTimeout.String())
	v.SetDefault(KeyListenAddr, DefaultListenAddr)

	v.SetConfigFile(filepath.Join(dir, ConfigFile))
	v.SetConfigType("yml")
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.AutomaticEnv()
	endpointVars := append([]string{envName(KeyAPIEndpoint)}, legacyEndpointVars...)
	if err := v.BindEnv(append([]string{KeyAPIEndpoint}, endpointVars...)...); err != nil {
		return nil, err
	}

	timeout, err := parseTimeout(v.GetString(KeyTimeout))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Dir:         dir,
		APIEndpoint: strings.TrimSpace(v.GetString(KeyAPIEndpoint)),
		Backend:     strings.ToLower(strings.TrimSpace(v.GetString(KeyBackend))),
		TaskList:    strings.TrimSpace(v.GetString(KeyTaskList)),
		Timeout:     timeout,
		ListenAddr:  strings.TrimSpace(v.GetString(KeyListenAddr)),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendREST, BackendGoogleTasks:
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	if c.Timeout < MinTimeout {
		return fmt.Errorf("invalid timeout: %s (minimum %s)", c.Timeout, MinTimeout)
	}
	if c.TaskList == "" {
		c.TaskList = DefaultTaskList
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// parseTimeout reads a Go duration ("2s", "500ms"). A bare number is seconds.
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout: %q", raw)
	}
	return d, nil
}

func envName(key string) string {
	return strings.ToUpper(AppName) + "_" + strings.ToUpper(key)
}

// loadEnvFiles loads each dotenv file that exists.
func loadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("invalid %s: %w", p, err)
		}
	}
	return nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
