package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quicktranslate/internal/providers"
	"quicktranslate/internal/utils"

	"github.com/spf13/viper"
)

// Configuration keys
const (
	KeyDataDir            = "data_dir"
	KeyRemoteConfigURL    = "remote_config_url"
	KeyCacheEnabled       = "cache.enabled"
	KeyCacheTTL           = "cache.ttl"
	KeyOpenAIBaseURL      = "providers.openai.base_url"
	KeyAnthropicBaseURL   = "providers.anthropic.base_url"
	KeyOpenRouterBaseURL  = "providers.openrouter.base_url"
	KeyServerListen       = "server.listen"
	KeyLogLevel           = "log.level"
	KeyLogDebug           = "log.debug"
	DefaultCacheTTL       = 7 * 24 * time.Hour
	DefaultServerListen   = "127.0.0.1:8787"
	configFileName        = ".quicktranslate"
	envPrefix             = "QT"
	storeFileName         = "store.json"
	translationCacheFile  = "cache.db"
	masterKeyFileName     = "master.key"
	defaultDataDirSubpath = "quicktranslate"
)

// Settings is the static runtime configuration read through viper
type Settings struct {
	DataDir         string
	RemoteConfigURL string
	CacheEnabled    bool
	CacheTTL        time.Duration
	Endpoints       providers.Endpoints
	ServerListen    string
	LogLevel        string
	LogDebug        string
}

// StorePath is the preference and catalog store file
func (s Settings) StorePath() string {
	return filepath.Join(s.DataDir, storeFileName)
}

// CachePath is the translation cache database
func (s Settings) CachePath() string {
	return filepath.Join(s.DataDir, translationCacheFile)
}

// KeyFile is the master key used to encrypt the stored API key
func (s Settings) KeyFile() string {
	return filepath.Join(s.DataDir, ".keys", masterKeyFileName)
}

// DefaultDataDir returns $XDG_CONFIG_HOME/quicktranslate, or ~/.config/quicktranslate
func DefaultDataDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, defaultDataDirSubpath), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", defaultDataDirSubpath), nil
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRemoteConfigURL, DefaultRemoteConfigURL)
	v.SetDefault(KeyCacheEnabled, true)
	v.SetDefault(KeyCacheTTL, DefaultCacheTTL)
	v.SetDefault(KeyServerListen, DefaultServerListen)
	v.SetDefault(KeyLogLevel, "WARN")
}

// InitConfig wires the config file and QT_* environment variables into v.
// A missing config file is not an error.
func InitConfig(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(configFileName)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		if cfgFile == "" && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load reads Settings from v and validates them
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		DataDir:         v.GetString(KeyDataDir),
		RemoteConfigURL: v.GetString(KeyRemoteConfigURL),
		CacheEnabled:    v.GetBool(KeyCacheEnabled),
		CacheTTL:        v.GetDuration(KeyCacheTTL),
		Endpoints: providers.Endpoints{
			OpenAI:     v.GetString(KeyOpenAIBaseURL),
			Anthropic:  v.GetString(KeyAnthropicBaseURL),
			OpenRouter: v.GetString(KeyOpenRouterBaseURL),
		},
		ServerListen: v.GetString(KeyServerListen),
		LogLevel:     v.GetString(KeyLogLevel),
		LogDebug:     v.GetString(KeyLogDebug),
	}

	if s.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return Settings{}, err
		}
		s.DataDir = dir
	}
	if s.CacheTTL <= 0 {
		s.CacheTTL = DefaultCacheTTL
	}

	for key, u := range map[string]string{
		KeyRemoteConfigURL:   s.RemoteConfigURL,
		KeyOpenAIBaseURL:     s.Endpoints.OpenAI,
		KeyAnthropicBaseURL:  s.Endpoints.Anthropic,
		KeyOpenRouterBaseURL: s.Endpoints.OpenRouter,
	} {
		if u != "" && !utils.ValidateURL(u) {
			return Settings{}, fmt.Errorf("invalid URL for %s: %s", key, u)
		}
	}
	return s, nil
}
