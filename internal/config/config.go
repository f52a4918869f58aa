package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = "config.yml"
	EnvPrefix   = "TASKS"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Repository RepositoryConfig `mapstructure:"repository" yaml:"repository"`
	UI         UIConfig         `mapstructure:"ui" yaml:"ui"`
	Prayer     PrayerConfig     `mapstructure:"prayer" yaml:"prayer"`
	Worker     WorkerConfig     `mapstructure:"worker" yaml:"worker"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port" yaml:"port"`
	Host         string        `mapstructure:"host" yaml:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	RateLimit    int           `mapstructure:"rate_limit" yaml:"rate_limit"`
	CORSOrigins  []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url" yaml:"url"`
	MaxConnections int           `mapstructure:"max_connections" yaml:"max_connections"`
	MinConnections int           `mapstructure:"min_connections" yaml:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development" yaml:"development"`
}

const (
	RepositoryInMemory = "inmemory"
	RepositoryFile     = "file"
	RepositorySQLite   = "sqlite"
	RepositoryPostgres = "postgres"
)

type RepositoryConfig struct {
	Type       string `mapstructure:"type" yaml:"type"` // inmemory, file, sqlite или postgres
	Dir        string `mapstructure:"dir" yaml:"dir"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

type UIConfig struct {
	PreferDark bool `mapstructure:"prefer_dark" yaml:"prefer_dark"`
}

type PrayerConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Method  int           `mapstructure:"method" yaml:"method"`
	City    string        `mapstructure:"city" yaml:"city"`
	Country string        `mapstructure:"country" yaml:"country"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type WorkerConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Schedule  string `mapstructure:"schedule" yaml:"schedule"`
	BatchSize int    `mapstructure:"batch_size" yaml:"batch_size"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			Host:         "localhost",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			RateLimit:    100,
			CORSOrigins:  []string{"http://localhost:5173"},
		},
		Database: DatabaseConfig{
			MaxConnections: 10,
			MinConnections: 2,
			IdleTimeout:    5 * time.Minute,
		},
		Logging: LoggingConfig{Development: true},
		Repository: RepositoryConfig{
			Type:       RepositoryFile,
			Dir:        "data",
			SQLitePath: "data/tasks.db",
		},
		Prayer: PrayerConfig{
			BaseURL: "https://api.aladhan.com/v1",
			Method:  2,
			City:    "Addis Ababa",
			Country: "Ethiopia",
			Timeout: 10 * time.Second,
		},
		Worker: WorkerConfig{
			Enabled:   true,
			Schedule:  "@every 5m",
			BatchSize: 100,
		},
	}
}

// Load читает .env, затем config.yml (или path), затем переменные TASKS_*.
// Отсутствие файла по умолчанию не ошибка: работаем на значениях по умолчанию.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
			path, explicit = env, true
		} else {
			path = DefaultPath
		}
	}

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		if explicit || !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("ошибка чтения %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)

	v.SetDefault("database.url", d.Database.URL)
	v.SetDefault("database.max_connections", d.Database.MaxConnections)
	v.SetDefault("database.min_connections", d.Database.MinConnections)
	v.SetDefault("database.idle_timeout", d.Database.IdleTimeout)

	v.SetDefault("logging.development", d.Logging.Development)

	v.SetDefault("repository.type", d.Repository.Type)
	v.SetDefault("repository.dir", d.Repository.Dir)
	v.SetDefault("repository.sqlite_path", d.Repository.SQLitePath)

	v.SetDefault("ui.prefer_dark", d.UI.PreferDark)

	v.SetDefault("prayer.base_url", d.Prayer.BaseURL)
	v.SetDefault("prayer.method", d.Prayer.Method)
	v.SetDefault("prayer.city", d.Prayer.City)
	v.SetDefault("prayer.country", d.Prayer.Country)
	v.SetDefault("prayer.timeout", d.Prayer.Timeout)

	v.SetDefault("worker.enabled", d.Worker.Enabled)
	v.SetDefault("worker.schedule", d.Worker.Schedule)
	v.SetDefault("worker.batch_size", d.Worker.BatchSize)
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case RepositoryInMemory, RepositoryFile, RepositorySQLite:
	case RepositoryPostgres:
		if c.Database.URL == "" {
			return errors.New("для repository.type=postgres нужен database.url")
		}
	default:
		return fmt.Errorf("неизвестный repository.type %q", c.Repository.Type)
	}
	if c.Server.Port == "" {
		return errors.New("server.port не задан")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// WriteDefault создаёт шаблон конфига; существующий файл не перезаписывается
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("файл %s уже существует", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("сериализация конфига: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("создание каталога %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("запись %s: %w", path, err)
	}
	return nil
}
