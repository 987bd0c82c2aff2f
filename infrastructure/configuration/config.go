package configuration

import (
	"fmt"
	"os"
	"strconv"

	"subtitle-credit/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	Database        Database        `json:"database"`
	App             App             `json:"app"`
	Pubsub          Pubsub          `json:"pubsub"`
	ServiceBus      ServiceBus      `json:"serviceBus"`
	RedisClient     RedisClient     `json:"redisClient"`
	Logger          Logger          `json:"logger"`
	YouTube         YouTube         `json:"youtube"`
	Pricing         Pricing         `json:"pricing"`
	Estimate        Estimate        `json:"estimate"`
	VideoService    Service         `json:"videoService"`
	SubtitleService SubtitleService `json:"subtitleService"`
	Paystack        Paystack        `json:"paystack"`
	RateLimit       RateLimit       `json:"rateLimit"`
	Credits         Credits         `json:"credits"`
}

type App struct {
	Port           int      `json:"port"`
	SecretKey      string   `json:"secretKey"`
	TLSEnabled     bool     `json:"tlsEnabled"`
	TLSCertFile    string   `json:"tlsCertFile"`
	TLSKeyFile     string   `json:"tlsKeyFile"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

type Database struct {
	Psql  Db `json:"psql"`
	MySql Db `json:"mysql"`
	Mongo Db `json:"mongo"`
	Mssql Db `json:"mssql"`
}

type Db struct {
	Name     string `json:"string"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

type RedisClient struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
}

type Logger struct {
	Format string `json:"format"`
}

type YouTube struct {
	APIKey string `json:"apiKey"`
}

// Pricing rates are credits per minute of video.
type Pricing struct {
	SrtPerMinute           string `json:"srtPerMinute"`
	MergePerMinute         string `json:"mergePerMinute"`
	TranslationPerMinute   string `json:"translationPerMinute"`
	CustomizationPerMinute string `json:"customizationPerMinute"`
	MinimumCharge          string `json:"minimumCharge"`
}

type Estimate struct {
	Secret     string `json:"secret"`
	TTLMinutes int    `json:"ttlMinutes"`
}

type Service struct {
	BaseURL        string `json:"baseURL"`
	APIKey         string `json:"apiKey"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

type SubtitleService struct {
	Service
	CallbackKey string `json:"callbackKey"`
}

type Paystack struct {
	BaseURL        string `json:"baseURL"`
	SecretKey      string `json:"secretKey"`
	CallbackURL    string `json:"callbackURL"`
	Currency       string `json:"currency"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

type RateLimit struct {
	Max           int64 `json:"max"`
	WindowMinutes int   `json:"windowMinutes"`
}

type Credits struct {
	Signup string `json:"signup"`
}

var C Config

func init() {
	Reload()
}

// Reload rebuilds C from the config file and the current environment.
func Reload() {
	C = Config{}
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initServices(&C)
	initDefaults(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	C.Database.Psql.Name = getConfigValue(C.Database.Psql.Name, "DB_NAME", "")
	C.Database.Psql.Host = getConfigValue(C.Database.Psql.Host, "DB_HOST", "localhost")
	C.Database.Psql.Port = getConfigValue(C.Database.Psql.Port, "DB_PORT", "5432")
	C.Database.Psql.User = getConfigValue(C.Database.Psql.User, "DB_USER", "postgres")
	C.Database.Psql.Password = getConfigValue(C.Database.Psql.Password, "DB_PASSWORD", "")

	// Azure SQL in production
	C.Database.Mssql.Name = getConfigValue(C.Database.Mssql.Name, "MSSQL_DB_NAME", "")
	C.Database.Mssql.Host = getConfigValue(C.Database.Mssql.Host, "MSSQL_HOST", "localhost")
	C.Database.Mssql.Port = getConfigValue(C.Database.Mssql.Port, "MSSQL_PORT", "1433")
	C.Database.Mssql.User = getConfigValue(C.Database.Mssql.User, "MSSQL_USER", "sa")
	C.Database.Mssql.Password = getConfigValue(C.Database.Mssql.Password, "MSSQL_PASSWORD", "")

	C.Database.MySql.Name = getConfigValue(C.Database.MySql.Name, "MYSQL_DB_NAME", "")
	C.Database.MySql.Host = getConfigValue(C.Database.MySql.Host, "MYSQL_HOST", "localhost")
	C.Database.MySql.Port = getConfigValue(C.Database.MySql.Port, "MYSQL_PORT", "3306")
	C.Database.MySql.User = getConfigValue(C.Database.MySql.User, "MYSQL_USER", "root")
	C.Database.MySql.Password = getConfigValue(C.Database.MySql.Password, "MYSQL_PASSWORD", "")

	C.Database.Mongo.Name = getConfigValue(C.Database.Mongo.Name, "MONGO_DB_NAME", "subtitle_credit")
	C.Database.Mongo.Host = getConfigValue(C.Database.Mongo.Host, "MONGO_HOST", "localhost")
	C.Database.Mongo.Port = getConfigValue(C.Database.Mongo.Port, "MONGO_PORT", "27017")
	C.Database.Mongo.User = getConfigValue(C.Database.Mongo.User, "MONGO_USER", "")
	C.Database.Mongo.Password = getConfigValue(C.Database.Mongo.Password, "MONGO_PASSWORD", "")

	C.RedisClient.Host = getConfigValue(C.RedisClient.Host, "REDIS_HOST", "localhost")
	C.RedisClient.Port = getConfigValue(C.RedisClient.Port, "REDIS_PORT", "6379")
	C.RedisClient.Username = getConfigValue(C.RedisClient.Username, "REDIS_USERNAME", "")
	C.RedisClient.Password = getConfigValue(C.RedisClient.Password, "REDIS_PASSWORD", "")
}

func initApp(C *Config) {
	// Prefer SECRET_KEY from environment for JWT verification; overrides config file when provided
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	C.App.TLSCertFile = getConfigValue(C.App.TLSCertFile, "TLS_CERT_FILE", "")
	C.App.TLSKeyFile = getConfigValue(C.App.TLSKeyFile, "TLS_KEY_FILE", "")
	if C.App.TLSEnabled {
		logger.GetLogger().WithFields(map[string]interface{}{"cert": C.App.TLSCertFile, "key": C.App.TLSKeyFile}).Info("TLS enabled via configuration")
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
}

func initServices(C *Config) {
	C.Estimate.Secret = getConfigValue(C.Estimate.Secret, "ESTIMATE_SECRET", C.App.SecretKey)
	C.VideoService.BaseURL = getConfigValue(C.VideoService.BaseURL, "VIDEO_SERVICE_URL", "")
	C.VideoService.APIKey = getConfigValue(C.VideoService.APIKey, "VIDEO_SERVICE_KEY", "")
	C.SubtitleService.BaseURL = getConfigValue(C.SubtitleService.BaseURL, "SUBTITLE_SERVICE_URL", C.VideoService.BaseURL)
	C.SubtitleService.APIKey = getConfigValue(C.SubtitleService.APIKey, "SUBTITLE_SERVICE_KEY", C.VideoService.APIKey)
	C.SubtitleService.CallbackKey = getConfigValue(C.SubtitleService.CallbackKey, "JOB_CALLBACK_KEY", "")
	C.Paystack.BaseURL = getConfigValue(C.Paystack.BaseURL, "PAYSTACK_BASE_URL", "https://api.paystack.co")
	C.Paystack.SecretKey = getConfigValue(C.Paystack.SecretKey, "PAYSTACK_SECRET_KEY", "")
	C.Paystack.CallbackURL = getConfigValue(C.Paystack.CallbackURL, "PAYSTACK_CALLBACK_URL", "")
	C.YouTube.APIKey = getConfigValue(C.YouTube.APIKey, "YOUTUBE_API_KEY", "")
	C.Pubsub.ProjectID = getConfigValue(C.Pubsub.ProjectID, "PUBSUB_PROJECT_ID", "")
	C.ServiceBus.Namespace = getConfigValue(C.ServiceBus.Namespace, "SERVICEBUS_NAMESPACE", "")

	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			C.RateLimit.Max = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_WINDOW_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			C.RateLimit.WindowMinutes = n
		}
	}
	if C.Paystack.SecretKey == "" {
		logger.GetLogger().Warn("Paystack.SecretKey not set; webhook signatures cannot be verified")
	}
}

func initDefaults(C *Config) {
	if C.Pricing.SrtPerMinute == "" {
		C.Pricing.SrtPerMinute = "1.00"
	}
	if C.Pricing.MergePerMinute == "" {
		C.Pricing.MergePerMinute = "1.50"
	}
	if C.Pricing.TranslationPerMinute == "" {
		C.Pricing.TranslationPerMinute = "0.50"
	}
	if C.Pricing.CustomizationPerMinute == "" {
		C.Pricing.CustomizationPerMinute = "0.25"
	}
	if C.Pricing.MinimumCharge == "" {
		C.Pricing.MinimumCharge = "1.00"
	}
	if C.Estimate.TTLMinutes <= 0 || C.Estimate.TTLMinutes > 30 {
		C.Estimate.TTLMinutes = 30
	}
	if C.VideoService.TimeoutSeconds <= 0 {
		C.VideoService.TimeoutSeconds = 15
	}
	if C.SubtitleService.TimeoutSeconds <= 0 {
		C.SubtitleService.TimeoutSeconds = 30
	}
	if C.Paystack.TimeoutSeconds <= 0 {
		C.Paystack.TimeoutSeconds = 15
	}
	if C.Paystack.Currency == "" {
		C.Paystack.Currency = "NGN"
	}
	if C.RateLimit.Max <= 0 {
		C.RateLimit.Max = 100
	}
	if C.RateLimit.WindowMinutes <= 0 {
		C.RateLimit.WindowMinutes = 15
	}
	if C.Credits.Signup == "" {
		C.Credits.Signup = "3"
	}
	if C.Pubsub.Topic == "" {
		C.Pubsub.Topic = "subtitle-credit-events"
	}
	if C.ServiceBus.Queue == "" {
		C.ServiceBus.Queue = "subtitle-credit-events"
	}
	if len(C.App.AllowedOrigins) == 0 {
		C.App.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:4200"}
	}
}

// getConfigValue gets value from environment first, then config, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" {
		return configValue
	}
	return defaultValue
}
