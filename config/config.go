package config

import (
	"os"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// WebConfig web server configuration. An empty Secret is replaced by a random
// key generated on first start and kept in storage.
type WebConfig struct {
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Secret string `yaml:"secret" json:"secret"`
}

// StorageConfig selects the key-value backend holding the catalog, images and chatbot settings.
// Type is one of bolt, redis, postgres, sqlite or memory.
type StorageConfig struct {
	Type     string `yaml:"type" json:"type"`
	Path     string `yaml:"path" json:"path"`
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	DSN      string `yaml:"dsn" json:"dsn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// LogConfig logging configuration
type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

// AdvisorConfig configures the text-completion collaborator behind the chat assistant.
// Provider is openai (any OpenAI-compatible endpoint) or gemini.
type AdvisorConfig struct {
	Provider    string  `yaml:"provider" json:"provider"`
	BaseURL     string  `yaml:"base_url" json:"base_url"`
	APIKey      string  `yaml:"api_key" json:"api_key"`
	Model       string  `yaml:"model" json:"model"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs" json:"timeout_secs"`
}

// MailConfig SMTP settings for inquiry notifications. An empty Host disables mail.
type MailConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	From     string `yaml:"from" json:"from"`
	To       string `yaml:"to" json:"to"`
	Workers  int    `yaml:"workers" json:"workers"`
}

// AdminConfig admin console credentials. PasswordHash (bcrypt) takes precedence over Password.
type AdminConfig struct {
	Password     string `yaml:"password" json:"password"`
	PasswordHash string `yaml:"password_hash" json:"password_hash"`
	SessionHours int    `yaml:"session_hours" json:"session_hours"`
}

// StoreConfig identity facts rendered into the assistant prompt.
type StoreConfig struct {
	Name          string   `yaml:"name" json:"name"`
	Address       string   `yaml:"address" json:"address"`
	Area          string   `yaml:"area" json:"area"`
	Phone         string   `yaml:"phone" json:"phone"`
	DeliveryAreas []string `yaml:"delivery_areas" json:"delivery_areas"`
	DeliveryMin   int      `yaml:"delivery_min" json:"delivery_min"`
}

type AppConfig struct {
	System  SysConfig     `yaml:"system" json:"system"`
	Web     WebConfig     `yaml:"web" json:"web"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Logger  LogConfig     `yaml:"logger" json:"logger"`
	Advisor AdvisorConfig `yaml:"advisor" json:"advisor"`
	Mail    MailConfig    `yaml:"mail" json:"mail"`
	Admin   AdminConfig   `yaml:"admin" json:"admin"`
	Store   StoreConfig   `yaml:"store" json:"store"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

// GetStoragePath returns the bolt/sqlite file path, defaulting under the data dir.
func (c *AppConfig) GetStoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Type {
	case "sqlite":
		return path.Join(c.GetDataDir(), "feedstore.db")
	default:
		return path.Join(c.GetDataDir(), "feedstore.bolt")
	}
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0755)
	_ = os.MkdirAll(c.GetDataDir(), 0755)
}

// DefaultAppConfig returns the built-in configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "feedstore",
			Location: "America/New_York",
			Workdir:  "/var/feedstore",
			Debug:    false,
		},
		Web: WebConfig{
			Host:   "0.0.0.0",
			Port:   8080,
		},
		Storage: StorageConfig{
			Type: "bolt",
			Addr: "127.0.0.1:6379",
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "/var/feedstore/logs/feedstore.log",
		},
		Advisor: AdvisorConfig{
			Provider:    "openai",
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-5-mini",
			MaxTokens:   600,
			Temperature: 0.7,
			TimeoutSecs: 30,
		},
		Mail: MailConfig{
			Port:    587,
			Workers: 2,
		},
		Admin: AdminConfig{
			SessionHours: 8,
		},
		Store: StoreConfig{
			Name:    "British Feed & Supplies",
			Address: "14589 Southern Blvd, Palm West Plaza, Loxahatchee Groves, FL 33470",
			Area:    "Loxahatchee Groves (Wellington area), Florida",
			Phone:   "(561) 633-6003",
			DeliveryAreas: []string{
				"Wellington", "Loxahatchee", "Loxahatchee Groves", "Royal Palm Beach",
				"Lake Worth", "Jupiter Farms", "Southwest Ranches",
			},
			DeliveryMin: 150,
		},
	}
}

// LoadConfig reads the YAML file at cfile on top of the defaults, then applies
// FEEDSTORE_* environment overrides. A missing file is not an error.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig()
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				panic(err)
			}
		}
	}
	applyEnv(cfg)
	cfg.Storage.Type = strings.ToLower(strings.TrimSpace(cfg.Storage.Type))
	if cfg.Storage.Type != "memory" {
		cfg.initDirs()
	}
	return cfg
}

func applyEnv(cfg *AppConfig) {
	setEnvValue("FEEDSTORE_SYSTEM_WORKER_DIR", &cfg.System.Workdir)
	setEnvValue("FEEDSTORE_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("FEEDSTORE_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("FEEDSTORE_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("FEEDSTORE_WEB_PORT", &cfg.Web.Port)
	setEnvValue("FEEDSTORE_WEB_SECRET", &cfg.Web.Secret)

	setEnvValue("FEEDSTORE_STORAGE_TYPE", &cfg.Storage.Type)
	setEnvValue("FEEDSTORE_STORAGE_PATH", &cfg.Storage.Path)
	setEnvValue("FEEDSTORE_STORAGE_ADDR", &cfg.Storage.Addr)
	setEnvValue("FEEDSTORE_STORAGE_PASSWORD", &cfg.Storage.Password)
	setEnvIntValue("FEEDSTORE_STORAGE_DB", &cfg.Storage.DB)
	setEnvValue("FEEDSTORE_STORAGE_DSN", &cfg.Storage.DSN)

	setEnvValue("FEEDSTORE_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("FEEDSTORE_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)

	setEnvValue("FEEDSTORE_ADVISOR_PROVIDER", &cfg.Advisor.Provider)
	setEnvValue("FEEDSTORE_ADVISOR_BASE_URL", &cfg.Advisor.BaseURL)
	setEnvValue("FEEDSTORE_ADVISOR_API_KEY", &cfg.Advisor.APIKey)
	setEnvValue("FEEDSTORE_ADVISOR_MODEL", &cfg.Advisor.Model)
	// plain OPENAI_* names are honoured too
	setEnvValue("OPENAI_API_KEY", &cfg.Advisor.APIKey)
	setEnvValue("OPENAI_BASE_URL", &cfg.Advisor.BaseURL)

	setEnvValue("FEEDSTORE_MAIL_HOST", &cfg.Mail.Host)
	setEnvIntValue("FEEDSTORE_MAIL_PORT", &cfg.Mail.Port)
	setEnvValue("FEEDSTORE_MAIL_USERNAME", &cfg.Mail.Username)
	setEnvValue("FEEDSTORE_MAIL_PASSWORD", &cfg.Mail.Password)
	setEnvValue("FEEDSTORE_MAIL_FROM", &cfg.Mail.From)
	setEnvValue("FEEDSTORE_MAIL_TO", &cfg.Mail.To)

	setEnvValue("FEEDSTORE_ADMIN_PASSWORD", &cfg.Admin.Password)
	setEnvValue("FEEDSTORE_ADMIN_PASSWORD_HASH", &cfg.Admin.PasswordHash)
	setEnvValue("ADMIN_PASSWORD", &cfg.Admin.Password)
}

func setEnvValue(name string, val *string) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue == "true" || evalue == "1" || evalue == "on"
	}
}

func setEnvIntValue(name string, val *int) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	p, err := strconv.Atoi(evalue)
	if err == nil {
		*val = p
	}
}
