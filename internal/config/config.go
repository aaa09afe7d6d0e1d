package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Worker   WorkerConfig
	Strava   StravaConfig
	Import   ImportConfig
	Explorer ExplorerConfig
	Heatmap  HeatmapConfig
	Athlete  AthleteConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	ExplorerTTL time.Duration
	HeatmapTTL  time.Duration
	ExportTTL   time.Duration
	StatsTTL    time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
	ScanInterval      time.Duration
	StravaSyncEnabled bool
	StravaSyncEvery   time.Duration
}

type StravaConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	BaseURL      string
	Timeout      time.Duration
	PerPage      int
}

type ImportConfig struct {
	Dir string
}

type ExplorerConfig struct {
	Zoom int
}

type HeatmapConfig struct {
	MaxPerPixel int
}

type AthleteConfig struct {
	MaxHR int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			ExplorerTTL: time.Duration(viper.GetInt("EXPLORER_CACHE_TTL")) * time.Second,
			HeatmapTTL:  time.Duration(viper.GetInt("HEATMAP_CACHE_TTL")) * time.Second,
			ExportTTL:   time.Duration(viper.GetInt("EXPORT_CACHE_TTL")) * time.Second,
			StatsTTL:    time.Duration(viper.GetInt("STATS_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        viper.GetInt("WORKER_MAX_RETRIES"),
			ScanInterval:      time.Duration(viper.GetInt("WORKER_SCAN_INTERVAL")) * time.Second,
			StravaSyncEnabled: viper.GetBool("WORKER_STRAVA_SYNC_ENABLED"),
			StravaSyncEvery:   time.Duration(viper.GetInt("WORKER_STRAVA_SYNC_EVERY")) * time.Second,
		},
		Strava: StravaConfig{
			ClientID:     viper.GetString("STRAVA_CLIENT_ID"),
			ClientSecret: viper.GetString("STRAVA_CLIENT_SECRET"),
			RefreshToken: viper.GetString("STRAVA_REFRESH_TOKEN"),
			BaseURL:      viper.GetString("STRAVA_BASE_URL"),
			Timeout:      time.Duration(viper.GetInt("STRAVA_TIMEOUT")) * time.Second,
			PerPage:      viper.GetInt("STRAVA_PER_PAGE"),
		},
		Import: ImportConfig{
			Dir: viper.GetString("IMPORT_DIR"),
		},
		Explorer: ExplorerConfig{
			Zoom: viper.GetInt("EXPLORER_ZOOM"),
		},
		Heatmap: HeatmapConfig{
			MaxPerPixel: viper.GetInt("HEATMAP_MAX_PER_PIXEL"),
		},
		Athlete: AthleteConfig{
			MaxHR: viper.GetInt("ATHLETE_MAX_HR"),
		},
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "activity-ingest-workers"
	}
	if cfg.Worker.StreamReadTimeout == 0 {
		cfg.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Worker.ScanInterval == 0 {
		cfg.Worker.ScanInterval = 60 * time.Second
	}
	if cfg.Worker.StravaSyncEvery == 0 {
		cfg.Worker.StravaSyncEvery = 15 * time.Minute
	}
	if cfg.Strava.BaseURL == "" {
		cfg.Strava.BaseURL = "https://www.strava.com"
	}
	if cfg.Strava.Timeout == 0 {
		cfg.Strava.Timeout = 30 * time.Second
	}
	if cfg.Strava.PerPage == 0 {
		cfg.Strava.PerPage = 50
	}
	if cfg.Import.Dir == "" {
		cfg.Import.Dir = "./activities"
	}
	if cfg.Explorer.Zoom == 0 {
		cfg.Explorer.Zoom = 14
	}
	if cfg.Heatmap.MaxPerPixel == 0 {
		cfg.Heatmap.MaxPerPixel = 30
	}
	if cfg.Athlete.MaxHR == 0 {
		cfg.Athlete.MaxHR = 185
	}
	if cfg.Cache.ExplorerTTL == 0 {
		cfg.Cache.ExplorerTTL = time.Hour
	}
	if cfg.Cache.HeatmapTTL == 0 {
		cfg.Cache.HeatmapTTL = 24 * time.Hour
	}
	if cfg.Cache.ExportTTL == 0 {
		cfg.Cache.ExportTTL = time.Hour
	}
	if cfg.Cache.StatsTTL == 0 {
		cfg.Cache.StatsTTL = 10 * time.Minute
	}
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
