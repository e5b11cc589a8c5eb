package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"
)

const (
	// DefaultFilename is the configuration file loaded when none is given and it exists.
	DefaultFilename = "udeshare.yml"
	// EnvPrefix prefixes all environment overrides. Levels are separated by `__`.
	EnvPrefix = "UDESHARE_"
)

// A Config holds the configuration shared by the CLI and the bridge.
type Config struct {
	Backend struct {
		Endpoint    string
		IPLookupURL string
	}
	UserAgent string
	Bridge    struct {
		Address string
	}
	Storage struct {
		Backend    string
		Path       string
		Codec      string
		Passphrase string
	}
	CookieDomain string
	URLs         struct {
		Login string
		Udemy string
		Home  string
	}
	Browser struct {
		Headless    bool
		UserDataDir string
		ExecPath    string
	}
	CoursesTTL time.Duration
	Log        struct {
		File  string
		Level string
	}
}

// BridgeURL returns the base URL of the bridge as seen by its clients.
func (c Config) BridgeURL() string {
	if strings.HasPrefix(c.Bridge.Address, "http://") || strings.HasPrefix(c.Bridge.Address, "https://") {
		return strings.TrimRight(c.Bridge.Address, "/")
	}
	return "http://" + c.Bridge.Address
}

func defaults() map[string]any {
	return map[string]any{
		"backend.endpoint":      "https://api.udeshare.app",
		"backend.ip_lookup_url": "",
		"user_agent":            "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36",
		"bridge.address":        "127.0.0.1:8765",
		"storage.backend":       "storm",
		"storage.path":          "udeshare.db",
		"storage.codec":         "msgpack",
		"storage.passphrase":    "",
		"cookies.domain":        ".udemy.com",
		"urls.login":            "https://udeshare.app/login",
		"urls.udemy":            "https://www.udemy.com/",
		"urls.home":             "https://www.udemy.com/home/my-courses/learning/",
		"browser.headless":      false,
		"browser.user_data_dir": "",
		"browser.exec_path":     "",
		"courses.ttl":           "30s",
		"log.file":              "udeshare.log",
		"log.level":             "info",
	}
}

// Load reads the configuration from defaults, the given YAML file and the environment.
// An empty filename loads DefaultFilename when it exists.
func Load(filename string) (Config, error) {
	_ = godotenv.Load()

	konf := koanf.New(".")
	if err := konf.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, errors.Wrap(err, "could not load defaults")
	}

	if filename == "" {
		if _, err := os.Stat(DefaultFilename); err == nil {
			filename = DefaultFilename
		}
	}
	if filename != "" {
		if err := konf.Load(file.Provider(filename), yaml.Parser()); err != nil {
			return Config{}, errors.Wrapf(err, "could not load %s", filename)
		}
	}

	err := konf.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return Config{}, errors.Wrap(err, "could not load environment")
	}

	return build(konf)
}

func build(konf *koanf.Koanf) (Config, error) {
	var cfg Config

	cfg.Backend.Endpoint = strings.TrimRight(konf.String("backend.endpoint"), "/")
	cfg.Backend.IPLookupURL = konf.String("backend.ip_lookup_url")
	cfg.UserAgent = konf.String("user_agent")
	cfg.Bridge.Address = konf.String("bridge.address")
	cfg.Storage.Backend = konf.String("storage.backend")
	cfg.Storage.Path = konf.String("storage.path")
	cfg.Storage.Codec = konf.String("storage.codec")
	cfg.Storage.Passphrase = konf.String("storage.passphrase")
	cfg.CookieDomain = konf.String("cookies.domain")
	cfg.URLs.Login = konf.String("urls.login")
	cfg.URLs.Udemy = konf.String("urls.udemy")
	cfg.URLs.Home = konf.String("urls.home")
	cfg.Browser.Headless = konf.Bool("browser.headless")
	cfg.Browser.UserDataDir = konf.String("browser.user_data_dir")
	cfg.Browser.ExecPath = konf.String("browser.exec_path")
	cfg.CoursesTTL = konf.Duration("courses.ttl")
	cfg.Log.File = konf.String("log.file")
	cfg.Log.Level = konf.String("log.level")

	if cfg.Backend.Endpoint == "" {
		return cfg, errors.New("backend.endpoint is required")
	}
	if cfg.Bridge.Address == "" {
		return cfg, errors.New("bridge.address is required")
	}
	if cfg.CoursesTTL <= 0 {
		return cfg, errors.New("courses.ttl must be a positive duration")
	}

	return cfg, nil
}
