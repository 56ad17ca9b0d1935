package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	// 单请求超时（含 OAuth 回源调用）
	RequestTimeoutSec int
	MaxConcurrent     int64
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type Session struct {
	Store      string // memory | redis
	CookieName string
	Secret     string
	Issuer     string
	TTLMin     int
	Secure     bool
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Provider 单个 OAuth 提供方；SecretsFile 优先于 ClientID/ClientSecret
type Provider struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	SecretsFile  string `mapstructure:"secrets_file"`
	// 仅测试/代理场景覆盖
	BaseURL string `mapstructure:"base_url"`
}

type OAuth struct {
	TimeoutSec int      `mapstructure:"timeout_sec"`
	Google     Provider `mapstructure:"google"`
	Facebook   Provider `mapstructure:"facebook"`
}

type Config struct {
	App     App
	Log     Log
	DB      DB
	Session Session
	Redis   Redis `mapstructure:"redis"`
	OAuth   OAuth `mapstructure:"oauth"`
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	return &c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "item-catalog")
	v.SetDefault("app.http.port", 5000)
	v.SetDefault("app.http.readtimeoutsec", 10)
	v.SetDefault("app.http.writetimeoutsec", 30)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.requesttimeoutsec", 20)
	v.SetDefault("app.http.maxconcurrent", 300)
	v.SetDefault("log.level", "info")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "itemCatalog.db")
	v.SetDefault("db.maxopenconns", 10)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.cookiename", "catalog_session")
	v.SetDefault("session.issuer", "item-catalog")
	v.SetDefault("session.ttlmin", 60*24)
	// 只有注册过的 key 才会被环境变量覆盖
	v.SetDefault("session.secret", "")
	v.SetDefault("session.secure", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("oauth.timeout_sec", 10)
}

// Secrets 读取客户端密钥文件：
// Google {"web":{"client_id","client_secret"}}，Facebook {"web":{"app_id","app_secret"}}
func (p Provider) Secrets(idKey, secretKey string) (id, secret string, err error) {
	if p.SecretsFile == "" {
		return p.ClientID, p.ClientSecret, nil
	}
	v := viper.New()
	v.SetConfigFile(p.SecretsFile)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return "", "", err
	}
	return v.GetString("web." + idKey), v.GetString("web." + secretKey), nil
}
