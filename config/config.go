package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Data     DataConfig     `yaml:"data"`
	Admin    AdminConfig    `yaml:"admin"`
	Site     SiteConfig     `yaml:"site"`
	Autosave AutosaveConfig `yaml:"autosave"`
	Cron     CronConfig     `yaml:"cron"`
}

type ServerConfig struct {
	Port        string   `yaml:"port"`
	Mode        string   `yaml:"mode"`       // debug, release
	PublicURL   string   `yaml:"public_url"` // 分享链接与二维码使用的站点地址
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql, postgres
	DSN  string `yaml:"dsn"`
}

type CacheConfig struct {
	Type          string `yaml:"type"` // memory, redis
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type DataConfig struct {
	Dir            string `yaml:"dir"`
	UploadDir      string `yaml:"upload_dir"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

type AdminConfig struct {
	Password     string        `yaml:"password"`
	PasswordHash string        `yaml:"password_hash"` // bcrypt，配置后忽略 password
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

type SiteConfig struct {
	Name   string `yaml:"name"`
	Accent string `yaml:"accent"`
}

type AutosaveConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

type CronConfig struct {
	OrphanSweep string        `yaml:"orphan_sweep"`
	OrphanGrace time.Duration `yaml:"orphan_grace"`
	CacheSweep  string        `yaml:"cache_sweep"` // 仅内存缓存使用
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		cfg = loadConfig()
	})
	return cfg
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      "8080",
			Mode:      "debug",
			PublicURL: "http://localhost:8080",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/penbook.db",
		},
		Cache: CacheConfig{
			Type:      "memory",
			RedisAddr: "localhost:6379",
		},
		Data: DataConfig{
			Dir:            "./data",
			UploadDir:      "./data/uploads",
			MaxUploadBytes: 10 << 20,
		},
		Admin: AdminConfig{
			Password: "admin",
			TokenTTL: 24 * time.Hour,
		},
		Site: SiteConfig{
			Name:   "The Pen Book",
			Accent: "#b68d40",
		},
		Autosave: AutosaveConfig{
			Debounce: 1500 * time.Millisecond,
		},
		Cron: CronConfig{
			OrphanSweep: "@every 6h",
			CacheSweep:  "@every 10m",
			OrphanGrace: 24 * time.Hour,
		},
	}
}

func loadConfig() *Config {
	config := defaults()

	// .env 可选，不存在时忽略
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		klog.Warningf("load .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			klog.Errorf("parse %s: %v", configPath, err)
		}
	}

	applyEnv(config)

	if config.Data.UploadDir == "" {
		config.Data.UploadDir = filepath.Join(config.Data.Dir, "uploads")
	}
	if config.Admin.JWTSecret == "" {
		// 未配置密钥时退化为口令派生，重启后令牌仍然有效
		config.Admin.JWTSecret = "penbook:" + config.Admin.Password + config.Admin.PasswordHash
		klog.Warningf("JWT_SECRET 未配置，使用派生密钥")
	}

	return config
}

// 环境变量优先级高于配置文件
func applyEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		config.Server.Mode = mode
	}
	if publicURL := os.Getenv("PUBLIC_URL"); publicURL != "" {
		config.Server.PublicURL = strings.TrimRight(publicURL, "/")
	}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		config.Server.CORSOrigins = strings.Split(frontend, ",")
	}

	// 数据库环境变量
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}

	if cacheType := os.Getenv("CACHE_TYPE"); cacheType != "" {
		config.Cache.Type = cacheType
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Cache.RedisAddr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		config.Cache.RedisPassword = pw
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			config.Cache.RedisDB = n
		}
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		config.Data.Dir = dataDir
	}
	if uploadDir := os.Getenv("UPLOAD_DIR"); uploadDir != "" {
		config.Data.UploadDir = uploadDir
	}

	if pw := os.Getenv("ADMIN_PASSWORD"); pw != "" {
		config.Admin.Password = pw
	}
	if hash := os.Getenv("ADMIN_PASSWORD_HASH"); hash != "" {
		config.Admin.PasswordHash = hash
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Admin.JWTSecret = secret
	}
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
