package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix, e.g. CURPY_CACHE_FILE.
const Prefix = "CURPY"

type Log struct {
	Level  string `envconfig:"LEVEL" default:"warn"`
	Format string `envconfig:"FORMAT" default:"text"`
	Prefix string `envconfig:"PREFIX" default:"curpy"`
}

type Storage struct {
	// Driver is file, memory, sqlite or postgres.
	Driver string `envconfig:"STORAGE_DRIVER" default:"file"`
	DSN    string `envconfig:"STORAGE_DSN" default:"curpy.db"`
	// CacheFile overrides the default cache location for the file driver.
	CacheFile string `envconfig:"CACHE_FILE"`
}

type Feed struct {
	URL           string        `envconfig:"FEED_URL" default:"https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"`
	HTTPTimeout   time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	SkipTLSVerify bool          `envconfig:"SKIP_TLS_VERIFY" default:"false"`
	// Cutoff is the publisher's daily release time, HH:MM in PublisherTZ.
	Cutoff      string `envconfig:"CUTOFF" default:"16:00"`
	PublisherTZ string `envconfig:"PUBLISHER_TZ" default:"Europe/Berlin"`
}

type Server struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8000"`
	// RefreshSchedule is a standard cron expression evaluated in the
	// publisher time zone.
	RefreshSchedule string `envconfig:"REFRESH_SCHEDULE" default:"5 16 * * 1-5"`
}

// Config is the full runtime configuration. Embedded sections share the
// CURPY_ prefix; Log keys read as CURPY_LOG_*.
type Config struct {
	Log Log
	Storage
	Feed
	Server
}

// Load reads .env files and then the CURPY_* environment. With no files
// given the working directory's .env is read if it exists; files named
// explicitly must exist.
func Load(envFiles ...string) (Config, error) {
	err := godotenv.Load(envFiles...)
	if err != nil && (len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist)) {
		return Config{}, err
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables, with sane defaults.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
