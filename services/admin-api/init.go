package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	"github.com/eduadmin/school-backend/pkg/apihelpers"
	"github.com/eduadmin/school-backend/pkg/db"
	"github.com/eduadmin/school-backend/pkg/mediastore"
	"github.com/eduadmin/school-backend/pkg/pwhash"
	"github.com/eduadmin/school-backend/pkg/utils"

	accountDB "github.com/eduadmin/school-backend/pkg/db/account"
	studentDB "github.com/eduadmin/school-backend/pkg/db/student"
	emailtemplates "github.com/eduadmin/school-backend/pkg/email-templates"
	smtp_client "github.com/eduadmin/school-backend/pkg/smtp-client"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_ACCOUNT_DB_USERNAME = "ACCOUNT_DB_USERNAME"
	ENV_ACCOUNT_DB_PASSWORD = "ACCOUNT_DB_PASSWORD"
	ENV_STUDENT_DB_USERNAME = "STUDENT_DB_USERNAME"
	ENV_STUDENT_DB_PASSWORD = "STUDENT_DB_PASSWORD"

	ENV_SESSION_TOKEN_SIGN_KEY = "SESSION_TOKEN_SIGN_KEY"
	ENV_SMTP_PASSWORD          = "SMTP_PASSWORD"

	ENV_MEDIA_STORE_ACCESS_KEY = "MEDIA_STORE_ACCESS_KEY"
	ENV_MEDIA_STORE_SECRET_KEY = "MEDIA_STORE_SECRET_KEY"
)

type AdminApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`

		// Mutual TLS configs
		MTLS struct {
			Use              bool                        `json:"use" yaml:"use"`
			CertificatePaths apihelpers.CertificatePaths `json:"certificate_paths" yaml:"certificate_paths"`
		} `json:"mtls" yaml:"mtls"`
	} `json:"gin_config" yaml:"gin_config"`

	// account management configs
	AccountConfig struct {
		PWHashing struct {
			Argon2Memory      uint32 `json:"argon2_memory" yaml:"argon2_memory"`
			Argon2Iterations  uint32 `json:"argon2_iterations" yaml:"argon2_iterations"`
			Argon2Parallelism uint8  `json:"argon2_parallelism" yaml:"argon2_parallelism"`
		} `json:"pw_hashing" yaml:"pw_hashing"`
		SessionTokenConfig struct {
			SignKey   string `json:"sign_key" yaml:"sign_key"`
			ExpiresIn string `json:"expires_in" yaml:"expires_in"`
		} `json:"session_token_config" yaml:"session_token_config"`
		UseSecureCookies bool `json:"use_secure_cookies" yaml:"use_secure_cookies"`
	} `json:"account_config" yaml:"account_config"`

	// Base URL used inside emails for verification and reset links
	AppBaseURL string `json:"app_base_url" yaml:"app_base_url"`

	// DB configs
	DBConfigs struct {
		AccountDB db.DBConfigYaml `json:"account_db" yaml:"account_db"`
		StudentDB db.DBConfigYaml `json:"student_db" yaml:"student_db"`
	} `json:"db_configs" yaml:"db_configs"`

	SmtpServerConfig smtp_client.SmtpServerList `json:"smtp_server_config" yaml:"smtp_server_config"`

	MediaStoreConfig mediastore.MediaStoreConfig `json:"media_store_config" yaml:"media_store_config"`
}

var (
	conf AdminApiConfig

	sessionTokenExpiresIn time.Duration

	accountDBService *accountDB.AccountDBService
	studentDBService *studentDB.StudentDBService
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(
		conf.Logging.LogLevel,
		conf.Logging.IncludeSrc,
		conf.Logging.LogToFile,
		conf.Logging.Filename,
		conf.Logging.MaxSize,
		conf.Logging.MaxAge,
		conf.Logging.MaxBackups,
		conf.Logging.CompressOldLogs,
	)

	// Override secrets from environment variables
	secretsOverride()

	sessionTokenExpiresIn, err = utils.ParseDurationString(conf.AccountConfig.SessionTokenConfig.ExpiresIn)
	if err != nil {
		slog.Error("failed to parse session token expiry", slog.String("error", err.Error()))
		panic(err)
	}

	// Init DBs
	initDBs()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// init argon2
	pwhash.InitArgonParams(
		conf.AccountConfig.PWHashing.Argon2Memory,
		conf.AccountConfig.PWHashing.Argon2Iterations,
		conf.AccountConfig.PWHashing.Argon2Parallelism,
	)

	emailtemplates.Init(conf.AppBaseURL)
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_ACCOUNT_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.AccountDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_ACCOUNT_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.AccountDB.Password = dbPassword
	}

	if dbUsername := os.Getenv(ENV_STUDENT_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.StudentDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_STUDENT_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.StudentDB.Password = dbPassword
	}

	if signKey := os.Getenv(ENV_SESSION_TOKEN_SIGN_KEY); signKey != "" {
		conf.AccountConfig.SessionTokenConfig.SignKey = signKey
	}

	if smtpPassword := os.Getenv(ENV_SMTP_PASSWORD); smtpPassword != "" {
		for i := range conf.SmtpServerConfig.Servers {
			conf.SmtpServerConfig.Servers[i].SetPassword(smtpPassword)
		}
	}

	if accessKey := os.Getenv(ENV_MEDIA_STORE_ACCESS_KEY); accessKey != "" {
		conf.MediaStoreConfig.AccessKey = accessKey
	}

	if secretKey := os.Getenv(ENV_MEDIA_STORE_SECRET_KEY); secretKey != "" {
		conf.MediaStoreConfig.SecretKey = secretKey
	}
}

func initDBs() {
	var err error
	accountDBService, err = accountDB.NewAccountDBService(db.DBConfigFromYamlObj(conf.DBConfigs.AccountDB))
	if err != nil {
		slog.Error("Error connecting to Account DB", slog.String("error", err.Error()))
		panic(err)
	}

	studentDBService, err = studentDB.NewStudentDBService(db.DBConfigFromYamlObj(conf.DBConfigs.StudentDB))
	if err != nil {
		slog.Error("Error connecting to Student DB", slog.String("error", err.Error()))
		panic(err)
	}
}
