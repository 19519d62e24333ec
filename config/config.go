package config

import (
	"os"
	"path"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
	NodeID   int64  `yaml:"node_id"` // snowflake node, 0-1023
}

// WebConfig web server configuration
type WebConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	BodyLimit   string `yaml:"body_limit"`   // JSON request bodies
	UploadLimit string `yaml:"upload_limit"` // multipart upload routes
	Metrics     bool   `yaml:"metrics"`
}

// DBConfig Database configuration.
// Type "postgres" uses gorm, "bolt" uses the embedded document store at Path.
type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Path     string `yaml:"path"`
	Debug    bool   `yaml:"debug"`
}

// LogConfig logging configuration
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// AuthConfig identity provider configuration.
// Provider "local" signs HS256 tokens itself, "remote" delegates to an
// identity-toolkit compatible REST service at ProviderURL.
type AuthConfig struct {
	Provider    string `yaml:"provider"`
	JwtSecret   string `yaml:"jwt_secret"`
	Issuer      string `yaml:"issuer"`
	TokenTTL    int    `yaml:"token_ttl"` // seconds
	ProviderURL string `yaml:"provider_url"`
	APIKey      string `yaml:"api_key"`
	Timeout     int    `yaml:"timeout"` // seconds
}

// InferenceConfig external OCR / embeddings service
type InferenceConfig struct {
	BaseURL        string `yaml:"base_url"`
	OCRPath        string `yaml:"ocr_path"`
	EmbeddingsPath string `yaml:"embeddings_path"` // empty disables product embeddings
	Timeout        int    `yaml:"timeout"`         // seconds
}

type AppConfig struct {
	System    SysConfig       `yaml:"system"`
	Web       WebConfig       `yaml:"web"`
	Database  DBConfig        `yaml:"database"`
	Logger    LogConfig       `yaml:"logger"`
	Auth      AuthConfig      `yaml:"auth"`
	Inference InferenceConfig `yaml:"inference"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

// BoltPath returns the embedded store file, defaulting into the data dir.
func (c *AppConfig) BoltPath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return path.Join(c.GetDataDir(), "kasir.db")
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0o755)
	_ = os.MkdirAll(c.GetDataDir(), 0o755)
}

// DefaultAppConfig returns a fresh copy of the built-in defaults.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "kasir",
			Location: "Asia/Jakarta",
			Workdir:  "/var/kasir",
			Debug:    false,
			NodeID:   1,
		},
		Web: WebConfig{
			Host:        "0.0.0.0",
			Port:        3000,
			BodyLimit:   "6M",
			UploadLimit: "32M",
			Metrics:     true,
		},
		Database: DBConfig{
			Type:     "postgres",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "kasir",
			User:     "postgres",
			Passwd:   "postgres",
			MaxConn:  100,
			IdleConn: 10,
			Debug:    false,
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "/var/kasir/logs/kasir.log",
		},
		Auth: AuthConfig{
			Provider: "local",
			Issuer:   "kasir",
			TokenTTL: 3600,
			Timeout:  10,
		},
		Inference: InferenceConfig{
			BaseURL: "http://127.0.0.1:8000",
			OCRPath: "/ocr",
			Timeout: 30,
		},
	}
}

// LoadConfig reads the YAML file when present, falls back to the defaults
// otherwise, and applies KASIR_* environment overrides last.
func LoadConfig(cfile string) (*AppConfig, error) {
	if cfile == "" {
		cfile = "kasir.yml"
	}
	if !fileExists(cfile) {
		cfile = "/etc/kasir.yml"
	}

	cfg := DefaultAppConfig()
	if fileExists(cfile) {
		data, err := os.ReadFile(cfile)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	if cfg.System.Workdir != "" {
		cfg.initDirs()
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setEnvValue("KASIR_SYSTEM_WORKER_DIR", &cfg.System.Workdir)
	setEnvValue("KASIR_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("KASIR_SYSTEM_DEBUG", &cfg.System.Debug)
	setEnvInt64Value("KASIR_SYSTEM_NODE_ID", &cfg.System.NodeID)

	setEnvValue("KASIR_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("PORT", &cfg.Web.Port)
	setEnvIntValue("KASIR_WEB_PORT", &cfg.Web.Port)
	setEnvValue("KASIR_WEB_UPLOAD_LIMIT", &cfg.Web.UploadLimit)
	setEnvBoolValue("KASIR_WEB_METRICS", &cfg.Web.Metrics)

	setEnvValue("KASIR_DB_TYPE", &cfg.Database.Type)
	setEnvValue("KASIR_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("KASIR_DB_PORT", &cfg.Database.Port)
	setEnvValue("KASIR_DB_NAME", &cfg.Database.Name)
	setEnvValue("KASIR_DB_USER", &cfg.Database.User)
	setEnvValue("KASIR_DB_PWD", &cfg.Database.Passwd)
	setEnvValue("KASIR_DB_PATH", &cfg.Database.Path)
	setEnvBoolValue("KASIR_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("KASIR_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("KASIR_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("KASIR_LOGGER_FILENAME", &cfg.Logger.Filename)

	setEnvValue("KASIR_AUTH_PROVIDER", &cfg.Auth.Provider)
	setEnvValue("KASIR_JWT_SECRET", &cfg.Auth.JwtSecret)
	setEnvValue("KASIR_JWT_ISSUER", &cfg.Auth.Issuer)
	setEnvIntValue("KASIR_TOKEN_TTL", &cfg.Auth.TokenTTL)
	setEnvValue("KASIR_IDP_URL", &cfg.Auth.ProviderURL)
	setEnvValue("KASIR_IDP_API_KEY", &cfg.Auth.APIKey)

	setEnvValue("KASIR_INFERENCE_URL", &cfg.Inference.BaseURL)
	setEnvValue("KASIR_OCR_PATH", &cfg.Inference.OCRPath)
	setEnvValue("KASIR_EMBEDDINGS_PATH", &cfg.Inference.EmbeddingsPath)
	setEnvIntValue("KASIR_INFERENCE_TIMEOUT", &cfg.Inference.Timeout)
}

func setEnvValue(name string, val *string) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	var evalue = strings.TrimSpace(os.Getenv(name))
	if evalue != "" {
		*val = cast.ToBool(evalue)
	}
}

func setEnvIntValue(name string, val *int) {
	var evalue = strings.TrimSpace(os.Getenv(name))
	if evalue == "" {
		return
	}
	if p, err := cast.ToIntE(evalue); err == nil {
		*val = p
	}
}

func setEnvInt64Value(name string, val *int64) {
	var evalue = strings.TrimSpace(os.Getenv(name))
	if evalue == "" {
		return
	}
	if p, err := cast.ToInt64E(evalue); err == nil {
		*val = p
	}
}

func fileExists(file string) bool {
	info, err := os.Stat(file)
	return err == nil && !info.IsDir()
}
