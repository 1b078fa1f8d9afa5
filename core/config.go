package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	serverConf struct {
		Address                   string
		DebugHost                 string
		Host                      string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	dbConf struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	mailConf struct {
		DefaultFromName    string
		DefaultFromAddress string
		SendgridAPIKey     string
		NotifyModelChange  bool
	}

	panelConf struct {
		APIBaseURL     string
		RequestTimeout time.Duration
		Username       string
		Token          string
		DefaultView    string
	}

	Config struct {
		AppName      string
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string

		Server   serverConf
		Database dbConf
		Mail     mailConf
		Panel    panelConf
	}
)

func (db dbConf) Address() string {
	return net.JoinHostPort(db.Host, strconv.Itoa(db.Port))
}

func (conf *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: conf.Mail.DefaultFromName, Address: conf.Mail.DefaultFromAddress}
}

// NewConfig loads the configuration from defaults, `config/.env.<env>` (if it exists) and the environment.
// Environment keys are prefixed with the upper-cased env name, eg. `DEV_SERVER_ADDRESS`.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "CoursePanel")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("configDir", "config")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "coursepanel")
	v.SetDefault("database.user", "coursepanel")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("mail.defaultFromName", "CoursePanel")
	v.SetDefault("mail.defaultFromAddress", "noreply@localhost")
	v.SetDefault("mail.sendgridApiKey", "")
	v.SetDefault("mail.notifyModelChange", true)

	v.SetDefault("panel.apiBaseUrl", "http://localhost:8000/v1/")
	v.SetDefault("panel.requestTimeout", 30*time.Second)
	v.SetDefault("panel.username", "")
	v.SetDefault("panel.token", "")
	v.SetDefault("panel.defaultView", "analytics")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(v.GetString("configDir"), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	conf := &Config{
		AppName:      v.GetString("appName"),
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
	}

	conf.Server.Address = v.GetString("server.address")
	conf.Server.DebugHost = v.GetString("server.debugHost")
	conf.Server.Host = v.GetString("server.host")
	conf.Server.JWTExpirationDelta = v.GetDuration("server.jwtExpirationDelta")
	conf.Server.JWTRefreshExpirationDelta = v.GetDuration("server.jwtRefreshExpirationDelta")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")

	conf.Database.Engine = v.GetString("database.engine")
	conf.Database.Host = v.GetString("database.host")
	conf.Database.Port = v.GetInt("database.port")
	conf.Database.Name = v.GetString("database.name")
	conf.Database.User = v.GetString("database.user")
	conf.Database.Password = v.GetString("database.password")
	conf.Database.AdminUser = v.GetString("database.adminUser")
	conf.Database.AdminPassword = v.GetString("database.adminPassword")
	conf.Database.DisableTLS = v.GetBool("database.disableTLS")

	conf.Mail.DefaultFromName = v.GetString("mail.defaultFromName")
	conf.Mail.DefaultFromAddress = v.GetString("mail.defaultFromAddress")
	conf.Mail.SendgridAPIKey = v.GetString("mail.sendgridApiKey")
	conf.Mail.NotifyModelChange = v.GetBool("mail.notifyModelChange")

	conf.Panel.APIBaseURL = v.GetString("panel.apiBaseUrl")
	conf.Panel.RequestTimeout = v.GetDuration("panel.requestTimeout")
	conf.Panel.Username = v.GetString("panel.username")
	conf.Panel.Token = v.GetString("panel.token")
	conf.Panel.DefaultView = v.GetString("panel.defaultView")

	return conf
}

// NewTestConfig returns a Config suitable for tests; it never reads the environment.
func NewTestConfig() *Config {
	conf := &Config{
		AppName:   "CoursePanel",
		Env:       "TEST",
		Build:     "test",
		Debug:     false,
		TestMode:  true,
		SecretKey: "test-secret",
	}
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour
	conf.Server.ShutdownTimeout = time.Second
	conf.Mail.DefaultFromName = "CoursePanel"
	conf.Mail.DefaultFromAddress = "noreply@localhost"
	conf.Mail.NotifyModelChange = true
	conf.Panel.RequestTimeout = 5 * time.Second
	conf.Panel.DefaultView = "analytics"
	return conf
}

func (conf *Config) String() string {
	return fmt.Sprintf("%s [%s] build=%s debug=%t", conf.AppName, conf.Env, conf.Build, conf.Debug)
}
