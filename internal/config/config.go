package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Dataset struct {
		Path            string `mapstructure:"path"`
		S3Bucket        string `mapstructure:"s3_bucket"`
		S3Key           string `mapstructure:"s3_key"`
		RefreshSchedule string `mapstructure:"refresh_schedule"`
	} `mapstructure:"dataset"`

	ObjectStore struct {
		Endpoint  string `mapstructure:"endpoint"`
		Region    string `mapstructure:"region"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"object_store"`

	Monitoring struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"monitoring"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	// Auto bind environment variables
	v.AutomaticEnv()

	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 8080)
	v.SetDefault("dataset.path", "data/transactions.csv")
	v.SetDefault("dataset.refresh_schedule", "")
	v.SetDefault("object_store.region", "auto")
	v.SetDefault("monitoring.port", 9090)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	// Override server settings from environment variables
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Server.Port = n
		}
	}

	// Override dataset source from DATASET_* environment variables
	if path := os.Getenv("DATASET_PATH"); path != "" {
		cfg.Dataset.Path = path
	}
	if bucket := os.Getenv("DATASET_S3_BUCKET"); bucket != "" {
		cfg.Dataset.S3Bucket = bucket
	}
	if key := os.Getenv("DATASET_S3_KEY"); key != "" {
		cfg.Dataset.S3Key = key
	}
	if schedule := os.Getenv("DATASET_REFRESH_SCHEDULE"); schedule != "" {
		cfg.Dataset.RefreshSchedule = schedule
	}

	// Object store credentials come from the environment, never the file
	if endpoint := os.Getenv("OBJECT_STORE_ENDPOINT"); endpoint != "" {
		cfg.ObjectStore.Endpoint = endpoint
	}
	if region := os.Getenv("OBJECT_STORE_REGION"); region != "" {
		cfg.ObjectStore.Region = region
	}
	if accessKey := os.Getenv("OBJECT_STORE_ACCESS_KEY"); accessKey != "" {
		cfg.ObjectStore.AccessKey = accessKey
	}
	if secretKey := os.Getenv("OBJECT_STORE_SECRET_KEY"); secretKey != "" {
		cfg.ObjectStore.SecretKey = secretKey
	}

	if port := os.Getenv("MONITORING_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Monitoring.Port = n
		}
	}

	return &cfg
}
