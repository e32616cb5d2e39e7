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

	"github.com/quizmint/qm-engine/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig holds the rate/lock store configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// DayOffset shifts the UTC midnight used for daily rollover
	DayOffset time.Duration `mapstructure:"day_offset"`
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	ConsumerName   string        `mapstructure:"consumer_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// TemporalConfig holds Temporal configuration
type TemporalConfig struct {
	HostPort                           string  `mapstructure:"host_port"`
	Namespace                          string  `mapstructure:"namespace"`
	RewardTaskQueue                    string  `mapstructure:"reward_task_queue"`
	MaxConcurrentActivityExecutionSize int     `mapstructure:"max_concurrent_activity_execution_size"`
	WorkerActivitiesPerSecond          float64 `mapstructure:"worker_activities_per_second"`
	MaxConcurrentActivityTaskPollers   int     `mapstructure:"max_concurrent_activity_task_pollers"`
}

// GatewayConfig holds the minting chain configuration
type GatewayConfig struct {
	RPCURL          string `mapstructure:"rpc_url"`
	ContractAddress string `mapstructure:"contract_address"`
	SignerKey       string `mapstructure:"signer_key"`
	GasLimit        uint64 `mapstructure:"gas_limit"`
	// CustodialAddress receives mints for guest identities until they
	// connect a wallet
	CustodialAddress string `mapstructure:"custodial_address"`
}

// PinningConfig holds the metadata pinning service configuration
type PinningConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	APIKey     string        `mapstructure:"api_key"`
	MaxRetries uint64        `mapstructure:"max_retries"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	// JWTSecret verifies wallet-session tokens
	JWTSecret string `mapstructure:"jwt_secret"`
}

// GameConfig holds the session rules
type GameConfig struct {
	QuestionsPerSession int           `mapstructure:"questions_per_session"`
	PerQuestionTime     time.Duration `mapstructure:"per_question_time"`
	WinThreshold        int           `mapstructure:"win_threshold"`
	DailyCapConnected   int64         `mapstructure:"daily_cap_connected"`
	DailyCapGuest       int64         `mapstructure:"daily_cap_guest"`
	Cooldown            time.Duration `mapstructure:"cooldown"`
	MaxDuration         time.Duration `mapstructure:"max_duration"`
	ThrottlePerMinute   int           `mapstructure:"throttle_per_minute"`
}

// EligibilityConfig holds the per-class mint windows
type EligibilityConfig struct {
	ConnectedWindow time.Duration `mapstructure:"connected_window"`
	GuestWindow     time.Duration `mapstructure:"guest_window"`
}

// ForgeConfig holds the forge recipes
type ForgeConfig struct {
	Categories                []domain.Category `mapstructure:"categories"`
	UltimateInputs            int               `mapstructure:"ultimate_inputs"`
	SeasonalInputsPerCategory int               `mapstructure:"seasonal_inputs_per_category"`
}

// SeasonConfig holds the season rollover parameters
type SeasonConfig struct {
	Length      time.Duration     `mapstructure:"length"`
	GracePeriod time.Duration     `mapstructure:"grace_period"`
	Categories  []domain.Category `mapstructure:"categories"`
	AutoOpen    bool              `mapstructure:"auto_open"`
}

// ScoringConfig holds the leaderboard scoring parameters
type ScoringConfig struct {
	PointsPerCorrect int64 `mapstructure:"points_per_correct"`
	PerfectBonus     int64 `mapstructure:"perfect_bonus"`
	PageSize         int   `mapstructure:"page_size"`
}

// WorkflowConfig holds mint/forge workflow tuning
type WorkflowConfig struct {
	ActivityTimeout     time.Duration `mapstructure:"activity_timeout"`
	ConfirmPollInterval time.Duration `mapstructure:"confirm_poll_interval"`
	ConfirmMaxPolls     int           `mapstructure:"confirm_max_polls"`
}

// WorkerConfig holds worker pool sizing
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// EligibilityExpirySweeperConfig holds configuration for the expiry sweeper
type EligibilityExpirySweeperConfig struct {
	BatchSize int           `mapstructure:"batch_size"`
	Worker    WorkerConfig  `mapstructure:"worker"`
	Interval  time.Duration `mapstructure:"interval"`
}

// SessionAbandonSweeperConfig holds configuration for the abandon sweeper
type SessionAbandonSweeperConfig struct {
	BatchSize int           `mapstructure:"batch_size"`
	Interval  time.Duration `mapstructure:"interval"`
}

// SeasonRollSweeperConfig holds configuration for the rollover sweeper
type SeasonRollSweeperConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// APIConfig holds configuration for the API server
type APIConfig struct {
	BaseConfig  `mapstructure:",squash"`
	Server      ServerConfig      `mapstructure:"server"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Temporal    TemporalConfig    `mapstructure:"temporal"`
	Game        GameConfig        `mapstructure:"game"`
	Eligibility EligibilityConfig `mapstructure:"eligibility"`
	Forge       ForgeConfig       `mapstructure:"forge"`
	Season      SeasonConfig      `mapstructure:"season"`
	Scoring     ScoringConfig     `mapstructure:"scoring"`
	Gateway     GatewayConfig     `mapstructure:"gateway"`
}

// WorkerProcessConfig holds configuration for the reward worker
type WorkerProcessConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Temporal   TemporalConfig `mapstructure:"temporal"`
	Gateway    GatewayConfig  `mapstructure:"gateway"`
	Pinning    PinningConfig  `mapstructure:"pinning"`
	Workflow   WorkflowConfig `mapstructure:"workflow"`
	Scoring    ScoringConfig  `mapstructure:"scoring"`
}

// SweeperProcessConfig holds configuration for the sweeper program
type SweeperProcessConfig struct {
	BaseConfig        `mapstructure:",squash"`
	Database          DatabaseConfig                 `mapstructure:"database"`
	Redis             RedisConfig                    `mapstructure:"redis"`
	NATS              NATSConfig                     `mapstructure:"nats"`
	Game              GameConfig                     `mapstructure:"game"`
	Eligibility       EligibilityConfig              `mapstructure:"eligibility"`
	Season            SeasonConfig                   `mapstructure:"season"`
	EligibilityExpiry EligibilityExpirySweeperConfig `mapstructure:"eligibility_expiry_sweeper"`
	SessionAbandon    SessionAbandonSweeperConfig    `mapstructure:"session_abandon_sweeper"`
	SeasonRoll        SeasonRollSweeperConfig        `mapstructure:"season_roll_sweeper"`
}

func setGameDefaults(v *viper.Viper) {
	v.SetDefault("game.questions_per_session", 10)
	v.SetDefault("game.per_question_time", "30s")
	v.SetDefault("game.win_threshold", 6)
	v.SetDefault("game.daily_cap_connected", 10)
	v.SetDefault("game.daily_cap_guest", 5)
	v.SetDefault("game.cooldown", "10m")
	v.SetDefault("game.max_duration", "15m")
	v.SetDefault("game.throttle_per_minute", 30)
	v.SetDefault("eligibility.connected_window", "60m")
	v.SetDefault("eligibility.guest_window", "25m")
	v.SetDefault("season.length", "2160h") // 90 days
	v.SetDefault("season.grace_period", "72h")
	v.SetDefault("season.auto_open", true)
	v.SetDefault("scoring.points_per_correct", 10)
	v.SetDefault("scoring.perfect_bonus", 50)
	v.SetDefault("scoring.page_size", 25)
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "10m")
}

func setNATSDefaults(v *viper.Viper, consumer string) {
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.stream_name", "SESSION_EVENTS")
	v.SetDefault("nats.consumer_name", consumer)
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
}

func setTemporalDefaults(v *viper.Viper) {
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.reward_task_queue", "reward-workflows")
	v.SetDefault("temporal.max_concurrent_activity_execution_size", 20)
	v.SetDefault("temporal.worker_activities_per_second", 20)
	v.SetDefault("temporal.max_concurrent_activity_task_pollers", 5)
}

// LoadAPIConfig loads configuration for the API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("forge.ultimate_inputs", 5)
	v.SetDefault("forge.seasonal_inputs_per_category", 2)
	setDatabaseDefaults(v)
	setNATSDefaults(v, "api")
	setTemporalDefaults(v)
	setGameDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadWorkerConfig loads configuration for the reward worker
func LoadWorkerConfig(configFile string, envPath string) (*WorkerProcessConfig, error) {
	v := configureViper("worker", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("workflow.activity_timeout", "1m")
	v.SetDefault("workflow.confirm_poll_interval", "10s")
	v.SetDefault("workflow.confirm_max_polls", 30)
	v.SetDefault("pinning.max_retries", 5)
	v.SetDefault("pinning.timeout", "30s")
	v.SetDefault("gateway.gas_limit", 300000)
	v.SetDefault("scoring.points_per_correct", 10)
	v.SetDefault("scoring.perfect_bonus", 50)
	v.SetDefault("scoring.page_size", 25)
	setDatabaseDefaults(v)
	setNATSDefaults(v, "leaderboard-scorer")
	setTemporalDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config WorkerProcessConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadSweeperConfig loads configuration for the sweeper program
func LoadSweeperConfig(configFile string, envPath string) (*SweeperProcessConfig, error) {
	v := configureViper("sweeper", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("eligibility_expiry_sweeper.batch_size", 200)
	v.SetDefault("eligibility_expiry_sweeper.worker.pool_size", 20)
	v.SetDefault("eligibility_expiry_sweeper.worker.queue_size", 200)
	v.SetDefault("eligibility_expiry_sweeper.interval", "30s")
	v.SetDefault("session_abandon_sweeper.batch_size", 100)
	v.SetDefault("session_abandon_sweeper.interval", "1m")
	v.SetDefault("season_roll_sweeper.interval", "15m")
	setDatabaseDefaults(v)
	setNATSDefaults(v, "sweeper")
	setGameDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config SweeperProcessConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/sweeper/, cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("QM_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Redis
		"redis.addr",
		"redis.password",
		"redis.db",
		"redis.day_offset",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.consumer_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Temporal
		"temporal.host_port",
		"temporal.namespace",
		"temporal.reward_task_queue",
		"temporal.max_concurrent_activity_execution_size",
		"temporal.worker_activities_per_second",
		"temporal.max_concurrent_activity_task_pollers",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Auth
		"auth.jwt_secret",
		// Game
		"game.questions_per_session",
		"game.per_question_time",
		"game.win_threshold",
		"game.daily_cap_connected",
		"game.daily_cap_guest",
		"game.cooldown",
		"game.max_duration",
		"game.throttle_per_minute",
		// Eligibility
		"eligibility.connected_window",
		"eligibility.guest_window",
		// Forge
		"forge.categories",
		"forge.ultimate_inputs",
		"forge.seasonal_inputs_per_category",
		// Season
		"season.length",
		"season.grace_period",
		"season.categories",
		"season.auto_open",
		// Scoring
		"scoring.points_per_correct",
		"scoring.perfect_bonus",
		"scoring.page_size",
		// Gateway
		"gateway.rpc_url",
		"gateway.contract_address",
		"gateway.signer_key",
		"gateway.gas_limit",
		"gateway.custodial_address",
		// Pinning
		"pinning.endpoint",
		"pinning.api_key",
		"pinning.max_retries",
		"pinning.timeout",
		// Workflow
		"workflow.activity_timeout",
		"workflow.confirm_poll_interval",
		"workflow.confirm_max_polls",
		// Sweepers
		"eligibility_expiry_sweeper.batch_size",
		"eligibility_expiry_sweeper.worker.pool_size",
		"eligibility_expiry_sweeper.worker.queue_size",
		"eligibility_expiry_sweeper.interval",
		"session_abandon_sweeper.batch_size",
		"session_abandon_sweeper.interval",
		"season_roll_sweeper.interval",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}
