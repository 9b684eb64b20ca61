package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLVL     string `yaml:"log_lvl" env:"LOG_LVL" env-default:"info"`
	LogPath    string `yaml:"log_path" env:"LOG_PATH"`
	HTTPServer `yaml:"http_server"`
	CORS       `yaml:"cors"`
	Static     `yaml:"static"`
	Upload     `yaml:"upload"`
	Vectorizer `yaml:"vectorizer"`
	Archive    `yaml:"archive"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"0.0.0.0:5000"`
	Timeout         time.Duration `yaml:"timeout" env-default:"90s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

type Static struct {
	Root string `yaml:"root" env:"STATIC_ROOT" env-default:"./web"`
}

type Upload struct {
	MaxSize           int64    `yaml:"max_size" env:"UPLOAD_MAX_SIZE" env-default:"31457280"` // 30 MiB
	AllowedExtensions []string `yaml:"allowed_extensions" env-default:"png,jpg,jpeg,gif,bmp"`
}

// Vectorizer credentials are only read from the environment.
// Bool flags are negative because cleanenv re-applies defaults to zero values.
type Vectorizer struct {
	Endpoint           string        `yaml:"endpoint" env:"VECTORIZER_ENDPOINT" env-default:"https://vectorizer.ai/api/v1/vectorize"`
	Timeout            time.Duration `yaml:"timeout" env:"VECTORIZER_TIMEOUT" env-default:"60s"`
	Mode               string        `yaml:"mode" env:"VECTORIZER_MODE"`
	HideUpstreamErrors bool          `yaml:"hide_upstream_errors" env:"VECTORIZER_HIDE_UPSTREAM_ERRORS"`
	APIID              string        `yaml:"-" env:"VECTORIZER_API_ID" env-required:"true"`
	APISecret          string        `yaml:"-" env:"VECTORIZER_API_SECRET" env-required:"true"`
}

type Archive struct {
	Enabled   bool   `yaml:"enabled" env:"ARCHIVE_ENABLED" env-default:"false"`
	Endpoint  string `yaml:"endpoint" env:"ARCHIVE_ENDPOINT"`
	Bucket    string `yaml:"bucket" env:"ARCHIVE_BUCKET" env-default:"vectorized"`
	Insecure  bool   `yaml:"insecure" env:"ARCHIVE_INSECURE"`
	AccessKey string `yaml:"-" env:"ARCHIVE_ACCESS_KEY"`
	SecretKey string `yaml:"-" env:"ARCHIVE_SECRET_KEY"`
}

// MustLoad loads the config pointed to by --config or CONFIG_PATH and exits on failure.
func MustLoad() *Config {
	// .env is optional, real environment wins
	_ = godotenv.Load()

	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}

// Load reads the YAML file at path and applies environment overrides.
func Load(path string) (*Config, error) {
	// check if file exists
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
