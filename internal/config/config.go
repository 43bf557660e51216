package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App              App              `mapstructure:",squash"`
	Server           Server           `mapstructure:",squash"`
	Database         Database         `mapstructure:",squash"`
	Redis            Redis            `mapstructure:",squash"`
	GoogleAds        GoogleAds        `mapstructure:",squash"`
	Auth             Auth             `mapstructure:",squash"`
	Queue            Queue            `mapstructure:",squash"`
	WorkerPool       WorkerPool       `mapstructure:",squash"`
	SyncRateLimit    SyncRateLimit    `mapstructure:",squash"`
	BackfillSync     BackfillSync     `mapstructure:",squash"`
	RetentionCleanup RetentionCleanup `mapstructure:",squash"`
	SecretKey        string           `mapstructure:"secret_key"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Redis struct {
	URL      string `mapstructure:"redis_url"`
	Addr     string `mapstructure:"redis_addr"`
	Password string `mapstructure:"redis_password"`
	DB       int    `mapstructure:"redis_db"`
}

type GoogleAds struct {
	BaseURL               string    `mapstructure:"google_ads_base_url"`
	Version               string    `mapstructure:"google_ads_version"`
	URL                   string    `mapstructure:"-"`
	OAuthTokenURL         string    `mapstructure:"google_ads_oauth_token_url"`
	DeveloperToken        string    `mapstructure:"google_ads_developer_token"`
	ClientID              string    `mapstructure:"google_ads_client_id"`
	ClientSecret          string    `mapstructure:"google_ads_client_secret"`
	RefreshToken          string    `mapstructure:"google_ads_refresh_token"`
	LoginCustomerID       string    `mapstructure:"google_ads_login_customer_id"`
	RequestTimeoutSeconds int       `mapstructure:"google_ads_request_timeout_seconds"`
	AccessToken           string    `mapstructure:"-"`
	TokenExpiresAt        time.Time `mapstructure:"-"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

type Queue struct {
	MaxAttempts       int     `mapstructure:"queue_max_attempts"`
	BaseDelaySeconds  int     `mapstructure:"queue_base_delay_seconds"`
	MaxDelaySeconds   int     `mapstructure:"queue_max_delay_seconds"`
	JitterFraction    float64 `mapstructure:"queue_jitter_fraction"`
	JobTTLMinutes     int     `mapstructure:"queue_job_ttl_minutes"`
	StaleClaimMinutes int     `mapstructure:"queue_stale_claim_minutes"`
}

type WorkerPool struct {
	Size                int  `mapstructure:"worker_pool_size"`
	PollIntervalSeconds int  `mapstructure:"worker_pool_poll_interval_seconds"`
	FetchTimeoutSeconds int  `mapstructure:"worker_pool_fetch_timeout_seconds"`
	Enabled             bool `mapstructure:"worker_pool_enabled"`
}

type SyncRateLimit struct {
	SuccessCooldownMinutes int `mapstructure:"sync_success_cooldown_minutes"`
	FailureCooldownMinutes int `mapstructure:"sync_failure_cooldown_minutes"`
	ForceFloorMinutes      int `mapstructure:"sync_force_floor_minutes"`
}

type BackfillSync struct {
	CronSchedule      string `mapstructure:"backfill_sync_cron"`
	LookbackDays      int    `mapstructure:"backfill_sync_lookback_days"`
	ChunkDays         int    `mapstructure:"backfill_sync_chunk_days"`
	MaxConcurrentJobs int    `mapstructure:"backfill_sync_max_concurrent_jobs"`
	Enabled           bool   `mapstructure:"backfill_sync_enabled"`
}

type RetentionCleanup struct {
	CronSchedule  string `mapstructure:"retention_cleanup_cron"`
	RetentionDays int    `mapstructure:"retention_cleanup_retention_days"`
	Enabled       bool   `mapstructure:"retention_cleanup_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/metrics")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("GOOGLE_ADS_BASE_URL", "https://googleads.googleapis.com")
	viper.SetDefault("GOOGLE_ADS_VERSION", "v17")
	viper.SetDefault("GOOGLE_ADS_OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token")
	viper.SetDefault("GOOGLE_ADS_DEVELOPER_TOKEN", "your_developer_token")
	viper.SetDefault("GOOGLE_ADS_CLIENT_ID", "your_client_id")
	viper.SetDefault("GOOGLE_ADS_CLIENT_SECRET", "your_client_secret")
	viper.SetDefault("GOOGLE_ADS_REFRESH_TOKEN", "your_refresh_token") // ONLY LOCAL
	viper.SetDefault("GOOGLE_ADS_LOGIN_CUSTOMER_ID", "")
	viper.SetDefault("GOOGLE_ADS_REQUEST_TIMEOUT_SECONDS", 30)

	viper.SetDefault("SECRET_KEY", "your_secret_key")

	// Defaults da fila de sincronização
	viper.SetDefault("QUEUE_MAX_ATTEMPTS", 5)        // Tentativas antes de mover o job para mortos
	viper.SetDefault("QUEUE_BASE_DELAY_SECONDS", 30) // Delay base do backoff exponencial
	viper.SetDefault("QUEUE_MAX_DELAY_SECONDS", 900) // Teto do backoff (15 minutos)
	viper.SetDefault("QUEUE_JITTER_FRACTION", 0.2)   // Jitter de até 20% sobre o delay
	viper.SetDefault("QUEUE_JOB_TTL_MINUTES", 120)   // Jobs mais velhos que isso são descartados no claim
	viper.SetDefault("QUEUE_STALE_CLAIM_MINUTES", 30)

	// Defaults do pool de workers
	viper.SetDefault("WORKER_POOL_SIZE", 3)
	viper.SetDefault("WORKER_POOL_POLL_INTERVAL_SECONDS", 5)
	viper.SetDefault("WORKER_POOL_FETCH_TIMEOUT_SECONDS", 60)
	viper.SetDefault("WORKER_POOL_ENABLED", true)

	// Defaults do rate limit de sincronização por cliente
	viper.SetDefault("SYNC_SUCCESS_COOLDOWN_MINUTES", 60)
	viper.SetDefault("SYNC_FAILURE_COOLDOWN_MINUTES", 15)
	viper.SetDefault("SYNC_FORCE_FLOOR_MINUTES", 5)

	// Defaults do backfill de métricas históricas
	viper.SetDefault("BACKFILL_SYNC_CRON", "0 3 * * *") // Todos os dias às 3h da manhã
	viper.SetDefault("BACKFILL_SYNC_LOOKBACK_DAYS", 90) // Janela de cobertura a verificar
	viper.SetDefault("BACKFILL_SYNC_CHUNK_DAYS", 30)    // Tamanho máximo de cada job de backfill
	viper.SetDefault("BACKFILL_SYNC_MAX_CONCURRENT_JOBS", 3)
	viper.SetDefault("BACKFILL_SYNC_ENABLED", false)

	// Defaults da limpeza de retenção
	viper.SetDefault("RETENTION_CLEANUP_CRON", "0 5 * * 0") // Todos os domingos às 5h da manhã
	viper.SetDefault("RETENTION_CLEANUP_RETENTION_DAYS", 730)
	viper.SetDefault("RETENTION_CLEANUP_ENABLED", false)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.GoogleAds.URL = fmt.Sprintf("%s/%s", config.GoogleAds.BaseURL, config.GoogleAds.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	// Obter diretório atual
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../.env"),            // Diretório acima
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		logrus.Info("Tentando carregar .env de:", location)
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
