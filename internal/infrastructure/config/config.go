package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构
// 使用Viper管理配置,支持YAML文件与环境变量覆盖(前缀SCRAPLEDGER_)
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Lock     LockConfig     `mapstructure:"lock"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Mode string `mapstructure:"mode"` // debug | release | test
}

// 数据库驱动
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite | mysql
	Path            string        `mapstructure:"path"`   // sqlite文件路径,":memory:"为内存库
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogSQL          bool          `mapstructure:"log_sql"`
}

// DSN 生成连接字符串
// mysql格式:user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true
// clientFoundRows使UPDATE的RowsAffected按匹配行计数,值未变化时不会被当成记录不存在
// sqlite直接使用文件路径,并打开外键约束与WAL
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		if d.Path == ":memory:" {
			return d.Path
		}
		return d.Path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	loc := url.QueryEscape(d.Loc)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s&clientFoundRows=true",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, loc)
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// 物料锁模式
const (
	LockModeLocal = "local"
	LockModeRedis = "redis"
)

// LockConfig 物料级串行化配置
// 单写者部署使用local;多实例共享同一数据库时使用redis
type LockConfig struct {
	Mode       string        `mapstructure:"mode"` // local | redis
	TTL        time.Duration `mapstructure:"ttl"`
	RetryEvery time.Duration `mapstructure:"retry_every"`
	RetryMax   int           `mapstructure:"retry_max"`
	KeyPrefix  string        `mapstructure:"key_prefix"`
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // text | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// MetricsConfig 指标配置,开启后进程退出前写入textfile
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Textfile string `mapstructure:"textfile"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"` // OTLP gRPC地址,如localhost:4317
	ServiceName string `mapstructure:"service_name"`
}

// Load 加载配置文件
// 支持:
// 1. 默认加载./config/config.yaml 或 ./config.yaml,文件不存在时使用默认值
// 2. 通过SCRAPLEDGER_ENV指定环境(如config.prod.yaml)
// 3. 环境变量覆盖(如SCRAPLEDGER_DATABASE_PATH → database.path)
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom 从指定文件加载配置,path为空时按默认路径查找
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SCRAPLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if env := v.GetString("env"); env != "" {
			v.SetConfigName("config." + env)
		}
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "scrapledger")
	v.SetDefault("app.mode", "release")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "scrapledger.db")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.loc", "Local")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("lock.mode", LockModeLocal)
	v.SetDefault("lock.ttl", 30*time.Second)
	v.SetDefault("lock.retry_every", 100*time.Millisecond)
	v.SetDefault("lock.retry_max", 50)
	v.SetDefault("lock.key_prefix", "scrapledger:material:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")

	v.SetDefault("metrics.textfile", "scrapledger.prom")

	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.service_name", "scrapledger")
}

// validate 配置校验
func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case DriverSQLite:
		if cfg.Database.Path == "" {
			return fmt.Errorf("sqlite模式必须配置database.path")
		}
	case DriverMySQL:
		if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
			return fmt.Errorf("无效的数据库端口: %d", cfg.Database.Port)
		}
		if cfg.Database.DBName == "" {
			return fmt.Errorf("mysql模式必须配置database.dbname")
		}
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", cfg.Database.Driver)
	}

	switch cfg.Lock.Mode {
	case LockModeLocal, LockModeRedis:
	default:
		return fmt.Errorf("不支持的锁模式: %s", cfg.Lock.Mode)
	}
	if cfg.Lock.Mode == LockModeRedis && cfg.Lock.TTL <= 0 {
		return fmt.Errorf("redis锁必须配置正数lock.ttl")
	}
	return nil
}
