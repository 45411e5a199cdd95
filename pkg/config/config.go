package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/artifacts"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/cache"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/classifier"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/database"
	"github.com/NeuralTrust/DisasterGate/pkg/textnorm"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Model      ModelConfig      `mapstructure:"model"`
	Artifacts  ArtifactsConfig  `mapstructure:"artifacts"`
	Redis      cache.Config     `mapstructure:"redis"`
	Events     EventsConfig     `mapstructure:"events"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Training   TrainingConfig   `mapstructure:"training"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Client     ClientConfig     `mapstructure:"client"`
	Text       TextConfig       `mapstructure:"text"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	MetricsPort     int           `mapstructure:"metrics_port"`
	MaxInputBytes   int           `mapstructure:"max_input_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	LoadOnStartup   bool          `mapstructure:"load_on_startup"`
}

type MetricsConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	EnableLatency     bool `mapstructure:"enable_latency"`
	EnablePredictions bool `mapstructure:"enable_predictions"`
}

type ModelConfig struct {
	Scheme      string        `mapstructure:"scheme"`
	Bucket      string        `mapstructure:"bucket"`
	Experiment  string        `mapstructure:"experiment_id"`
	Run         string        `mapstructure:"run_id"`
	LoadTimeout time.Duration `mapstructure:"load_timeout"`
}

func (m ModelConfig) Locator() model.Locator {
	return model.Locator{
		Scheme:     m.Scheme,
		Bucket:     m.Bucket,
		Experiment: m.Experiment,
		Run:        m.Run,
	}
}

type ArtifactsConfig struct {
	Root               string             `mapstructure:"root"`
	S3                 artifacts.S3Config `mapstructure:"s3"`
	BreakerTimeout     time.Duration      `mapstructure:"breaker_timeout"`
	BreakerMaxFailures uint32             `mapstructure:"breaker_max_failures"`
}

type EventsConfig struct {
	Enabled   bool                   `mapstructure:"enabled"`
	Workers   int                    `mapstructure:"workers"`
	QueueSize int                    `mapstructure:"queue_size"`
	Kafka     map[string]interface{} `mapstructure:"kafka"`
}

type DatabaseConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"name"`
	AdminDB    string `mapstructure:"admin_name"`
	SSLMode    string `mapstructure:"sslmode"`
	MaxRetries int    `mapstructure:"max_retries"`
}

func (d DatabaseConfig) Connection() *database.Config {
	return &database.Config{
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		DBName:   d.DBName,
		AdminDB:  d.AdminDB,
		SSLMode:  d.SSLMode,
	}
}

type TrainingConfig struct {
	DatasetPath string            `mapstructure:"dataset_path"`
	Retries     int               `mapstructure:"retries"`
	RetryDelay  time.Duration     `mapstructure:"retry_delay"`
	Classifier  classifier.Config `mapstructure:"classifier"`
}

type MonitoringConfig struct {
	ReferencePath string        `mapstructure:"reference_path"`
	CurrentPath   string        `mapstructure:"current_path"`
	ChunkSize     int           `mapstructure:"chunk_size"`
	SendInterval  time.Duration `mapstructure:"send_interval"`
	Begin         time.Time     `mapstructure:"begin"`
}

// TextConfig is shared by every command so that training, serving and
// monitoring clean text the same way.
type TextConfig struct {
	EmoticonsFile string `mapstructure:"emoticons_file"`
}

// Normalizer builds the text normalizer, replacing the embedded emoticon
// table when EmoticonsFile is set.
func (t TextConfig) Normalizer() (*textnorm.Normalizer, error) {
	if t.EmoticonsFile == "" {
		return textnorm.New()
	}
	data, err := os.ReadFile(t.EmoticonsFile)
	if err != nil {
		return nil, fmt.Errorf("read emoticon table: %w", err)
	}
	return textnorm.New(textnorm.WithEmoticons(textnorm.ParseEmoticons(string(data))))
}

type ClientConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads config.yaml from configPath, ./config or the working directory,
// then applies environment overrides (model.run_id -> MODEL_RUN_ID).
// A missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// bindLegacyEnv keeps the variable names older deployments export.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"model.bucket":        {"MODEL_BUCKET"},
		"model.experiment_id": {"MODEL_EXPERIMENT_ID", "EXPERIMENT_ID"},
		"model.run_id":        {"MODEL_RUN_ID", "RUN_ID"},
		"client.url":          {"CLIENT_URL", "PREDICT_API_URL"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.max_input_bytes", 10000)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.load_on_startup", true)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.enable_latency", true)
	v.SetDefault("metrics.enable_predictions", true)

	v.SetDefault("model.scheme", model.DefaultScheme)
	v.SetDefault("model.bucket", "")
	v.SetDefault("model.experiment_id", "")
	v.SetDefault("model.run_id", "")
	v.SetDefault("model.load_timeout", "60s")

	v.SetDefault("artifacts.root", "./mlruns")
	v.SetDefault("artifacts.s3.region", "us-east-1")
	v.SetDefault("artifacts.s3.endpoint", "")
	v.SetDefault("artifacts.s3.access_key", "")
	v.SetDefault("artifacts.s3.secret_key", "")
	v.SetDefault("artifacts.s3.session_token", "")
	v.SetDefault("artifacts.s3.role_arn", "")
	v.SetDefault("artifacts.s3.use_path_style", false)
	v.SetDefault("artifacts.s3.max_attempts", 3)
	v.SetDefault("artifacts.breaker_timeout", "30s")
	v.SetDefault("artifacts.breaker_max_failures", 3)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tls", false)
	v.SetDefault("redis.ttl", "24h")
	v.SetDefault("redis.local_ttl", "5m")
	v.SetDefault("redis.local_size", 10000)
	v.SetDefault("redis.read_timeout", "500ms")

	v.SetDefault("events.enabled", false)
	v.SetDefault("events.workers", 4)
	v.SetDefault("events.queue_size", 1000)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "evidently")
	v.SetDefault("database.admin_name", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_retries", 3)

	v.SetDefault("training.dataset_path", "data/train.csv")
	v.SetDefault("training.retries", 3)
	v.SetDefault("training.retry_delay", "2s")
	defaults := classifier.DefaultConfig()
	v.SetDefault("training.classifier.vectorizer.min_df", defaults.Vectorizer.MinDF)
	v.SetDefault("training.classifier.vectorizer.max_df", defaults.Vectorizer.MaxDF)
	v.SetDefault("training.classifier.vectorizer.ngram_min", defaults.Vectorizer.NGramMin)
	v.SetDefault("training.classifier.vectorizer.ngram_max", defaults.Vectorizer.NGramMax)
	v.SetDefault("training.classifier.vectorizer.stop_words", defaults.Vectorizer.StopWords)
	v.SetDefault("training.classifier.logistic.c", defaults.Logistic.C)
	v.SetDefault("training.classifier.logistic.learning_rate", defaults.Logistic.LearningRate)
	v.SetDefault("training.classifier.logistic.max_iter", defaults.Logistic.MaxIter)
	v.SetDefault("training.classifier.logistic.tolerance", defaults.Logistic.Tolerance)

	v.SetDefault("monitoring.reference_path", "data/reference.csv")
	v.SetDefault("monitoring.current_path", "data/current.csv")
	v.SetDefault("monitoring.chunk_size", 500)
	v.SetDefault("monitoring.send_interval", "10s")
	v.SetDefault("monitoring.begin", "2023-08-01T00:00:00Z")

	v.SetDefault("client.url", "http://localhost:8000/predict")
	v.SetDefault("client.timeout", "60s")

	v.SetDefault("text.emoticons_file", "")
}
