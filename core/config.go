package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	DatabaseConfig struct {
		Engine     string
		Host       string
		Port       int
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	RemoteConfig struct {
		WriteTimeout time.Duration
		RefreshSpec  string // cron spec; empty disables background reloads
	}

	SessionConfig struct {
		Path string
		TTL  time.Duration
	}

	ServerConfig struct {
		Address         string
		ShutdownTimeout time.Duration
	}

	GeminiConfig struct {
		APIKey string
		Model  string
	}

	B2Config struct {
		AccountID string
		AppKey    string
		Bucket    string
	}

	Config struct {
		Debug        bool
		TestMode     bool
		Env          string
		Build        string
		AppName      string
		SecretKey    string
		RollbarToken string

		Database DatabaseConfig
		Remote   RemoteConfig
		Session  SessionConfig
		Server   ServerConfig
		Gemini   GeminiConfig
		B2       B2Config
	}
)

func (db DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", db.Host, db.Port)
}

// NewConfig reads the configuration from the environment.
// ENV selects the environment (DEV by default) which is also the env var prefix, eg. DEV_DATABASE_HOST.
// A `config/.env.<env>` file is loaded first when present.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "develop")
	conf.SetDefault("appName", "ClassPoll+")
	conf.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", 5432)
	conf.SetDefault("database.name", "classpoll")
	conf.SetDefault("database.disableTLS", true)
	conf.SetDefault("remote.writeTimeout", 10*time.Second)
	conf.SetDefault("remote.refreshSpec", "@every 5m")
	conf.SetDefault("session.path", filepath.Join("data", "session.db"))
	conf.SetDefault("session.ttl", 0) // never expires
	conf.SetDefault("server.address", "127.0.0.1:8000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("gemini.model", "gemini-2.5-flash")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	confDir := os.Getenv("CONFIG_DIR")
	if confDir == "" {
		confDir = "config"
	}
	dotEnvPath := filepath.Join(confDir, ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		Env:          env,
		Build:        conf.GetString("build"),
		AppName:      conf.GetString("appName"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
		Database: DatabaseConfig{
			Engine:     conf.GetString("database.engine"),
			Host:       conf.GetString("database.host"),
			Port:       conf.GetInt("database.port"),
			Name:       conf.GetString("database.name"),
			User:       conf.GetString("database.user"),
			Password:   conf.GetString("database.password"),
			DisableTLS: conf.GetBool("database.disableTLS"),
		},
		Remote: RemoteConfig{
			WriteTimeout: conf.GetDuration("remote.writeTimeout"),
			RefreshSpec:  conf.GetString("remote.refreshSpec"),
		},
		Session: SessionConfig{
			Path: conf.GetString("session.path"),
			TTL:  conf.GetDuration("session.ttl"),
		},
		Server: ServerConfig{
			Address:         conf.GetString("server.address"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
		},
		Gemini: GeminiConfig{
			APIKey: conf.GetString("gemini.apiKey"),
			Model:  conf.GetString("gemini.model"),
		},
		B2: B2Config{
			AccountID: conf.GetString("b2.accountID"),
			AppKey:    conf.GetString("b2.appKey"),
			Bucket:    conf.GetString("b2.bucket"),
		},
	}
}
