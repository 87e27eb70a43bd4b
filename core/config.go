package core

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database engines
const (
	EnginePostgres = "postgres"
	EngineMongo    = "mongo"
	EngineInMem    = "inmem"
)

type (
	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		DisableReqLogs            bool
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		URI           string // mongo only
	}

	Config struct {
		Build        string
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		SecretKey    string
		RollbarToken string
		WorkDir      string

		Server   ServerConfig
		Database DatabaseConfig
	}
)

func (dc DatabaseConfig) Address() string {
	return net.JoinHostPort(dc.Host, strconv.Itoa(dc.Port))
}

// NewConfig reads the app configuration from the environment.
// Variables are prefixed by the current ENV (DEV (default), TEST, QA, PROD): eg. DEV_DATABASE_HOST.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("build", "develop")
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "SemSync")
	conf.SetDefault("secretKey", "q8-ahz3)kd$+0w=vs&ry4p(f!j)#*e6(#tb2^$mxo1nbc")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.disableReqLogs", false)
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	conf.SetDefault("database.engine", EnginePostgres)
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", 5432)
	conf.SetDefault("database.name", "semsync")
	conf.SetDefault("database.user", "semsync")
	conf.SetDefault("database.password", "semsync")
	conf.SetDefault("database.adminUser", "postgres")
	conf.SetDefault("database.adminPassword", "postgres")
	conf.SetDefault("database.disableTLS", true)
	conf.SetDefault("database.uri", "mongodb://localhost:27017")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	case "QA", "PROD":
		conf.SetDefault("debug", false)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Build:        conf.GetString("build"),
		Env:          env,
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
		WorkDir:      wd,
		Server: ServerConfig{
			Host:                      conf.GetString("server.host"),
			Address:                   conf.GetString("server.address"),
			DebugHost:                 conf.GetString("server.debugHost"),
			DisableReqLogs:            conf.GetBool("server.disableReqLogs"),
			ShutdownTimeout:           conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        strings.ToLower(conf.GetString("database.engine")),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetInt("database.port"),
			Name:          conf.GetString("database.name"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
			URI:           conf.GetString("database.uri"),
		},
	}
}

// NewTestConfig returns a Config suited for tests: no dotenv lookup, in-memory DB.
func NewTestConfig() *Config {
	return &Config{
		Build:     "test",
		Env:       "TEST",
		TestMode:  true,
		AppName:   "SemSync",
		SecretKey: "secret",
		Server: ServerConfig{
			Host:                      "localhost",
			DisableReqLogs:            true,
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Database: DatabaseConfig{Engine: EngineInMem},
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("%s (env=%s, db=%s)", c.AppName, c.Env, c.Database.Engine)
}
