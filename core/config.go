package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		AppName  string
		// SecretKey signs the session tokens.
		SecretKey        string
		WorkDir          string
		Build            string
		DefaultFromEmail string
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
		Storage  StorageConfig
	}

	ServerConfig struct {
		Host                   string
		Addr                   string
		SessionExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine     string
		Name       string
		User       string
		Password   string
		Host       string
		Port       string
		DisableTLS bool
	}

	// StorageConfig configures the S3-compatible diagram bucket.
	// An empty Endpoint disables object storage; uploads then fall back
	// to inline data URIs.
	StorageConfig struct {
		Endpoint  string
		Region    string
		Bucket    string
		AccessKey string
		SecretKey string
		Timeout   time.Duration
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c StorageConfig) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// NewConfig loads configuration from the environment (viper AutomaticEnv with
// the ENV name as prefix), after loading config/.env.<env> if it exists.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Staffroom")
	v.SetDefault("secretKey", "x7dh!p0q5-wer)enb$+57=dz&uoxh2(h(#yg4h^$ce-dev-only")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("sessionExpirationDelta", 7*24*time.Hour)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "staffroom")
	v.SetDefault("dbUser", "")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbDisableTLS", true)
	v.SetDefault("storageEndpoint", "")
	v.SetDefault("storageRegion", "us-east-1")
	v.SetDefault("storageBucket", "staffroom-diagrams")
	v.SetDefault("storageAccessKey", "")
	v.SetDefault("storageSecretKey", "")
	v.SetDefault("storageTimeout", 10*time.Second)
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("build", "dev")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		Env:              env,
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		WorkDir:          wd,
		Build:            v.GetString("build"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                   v.GetString("serverHost"),
			Addr:                   v.GetString("serverAddr"),
			SessionExpirationDelta: v.GetDuration("sessionExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("dbEngine"),
			Name:       v.GetString("dbName"),
			User:       v.GetString("dbUser"),
			Password:   v.GetString("dbPassword"),
			Host:       v.GetString("dbHost"),
			Port:       v.GetString("dbPort"),
			DisableTLS: v.GetBool("dbDisableTLS"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("storageEndpoint"),
			Region:    v.GetString("storageRegion"),
			Bucket:    v.GetString("storageBucket"),
			AccessKey: v.GetString("storageAccessKey"),
			SecretKey: v.GetString("storageSecretKey"),
			Timeout:   v.GetDuration("storageTimeout"),
		},
	}
}
