package config

import (
	"github.com/dzm2020/cleveland/internal/errs"
	"github.com/dzm2020/cleveland/pkg/glog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DispatcherGoroutine = "goroutine"
	DispatcherPool      = "pool"
)

// Config 运行时配置
type Config struct {
	// Glog 日志配置
	Glog glog.Config `json:"glog" yaml:"glog" mapstructure:"glog"`
	// Actor actor 默认参数
	Actor ActorConfig `json:"actor" yaml:"actor" mapstructure:"actor"`
	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
}

type ActorConfig struct {
	// MaxInboxSize 邮箱容量，0 表示不限
	MaxInboxSize int `json:"maxInboxSize" yaml:"maxInboxSize" mapstructure:"maxInboxSize"`
	// Throughput 连续处理多少条消息后让出 CPU，0 表示不主动让出
	Throughput int              `json:"throughput" yaml:"throughput" mapstructure:"throughput"`
	Dispatcher DispatcherConfig `json:"dispatcher" yaml:"dispatcher" mapstructure:"dispatcher"`
}

type DispatcherConfig struct {
	// Type goroutine 或 pool
	Type string `json:"type" yaml:"type" mapstructure:"type"`
	// PoolSize 协程池大小，即可同时运行的 actor 上限
	PoolSize int `json:"poolSize" yaml:"poolSize" mapstructure:"poolSize"`
	// Nonblocking 池满时立即失败
	Nonblocking bool `json:"nonblocking" yaml:"nonblocking" mapstructure:"nonblocking"`
}

type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Address   string `json:"address" yaml:"address" mapstructure:"address"`
	Namespace string `json:"namespace" yaml:"namespace" mapstructure:"namespace"`
}

// Load 读取配置文件，格式由扩展名决定（yaml、yml、json 等 viper 支持的格式）
// 文件中未出现的字段保持默认值
func Load(profileFilePath string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(profileFilePath)
	if err := vp.ReadInConfig(); err != nil {
		return nil, errs.ErrReadConfigFileFailed(err)
	}
	var config = Default()
	if err := vp.Unmarshal(config); err != nil {
		return nil, errs.ErrUnmarshalConfigFailed(err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Dump 以 yaml 输出配置，用于打印生效的配置
func (c *Config) Dump() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Default 生成默认配置
func Default() *Config {
	return &Config{
		Glog: *glog.DefaultConfig(),
		Actor: ActorConfig{
			MaxInboxSize: 0,
			Throughput:   0,
			Dispatcher: DispatcherConfig{
				Type:     DispatcherGoroutine,
				PoolSize: 1000,
			},
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Address:   ":9090",
			Namespace: "cleveland",
		},
	}
}

// Validate 检查配置是否合法
func (c *Config) Validate() error {
	if c.Glog.Level != "" && !glog.ValidLevel(c.Glog.Level) {
		return errs.ErrInvalidConfigField("glog.level", "unknown level %q", c.Glog.Level)
	}
	if c.Actor.MaxInboxSize < 0 {
		return errs.ErrInvalidConfigField("actor.maxInboxSize", "must not be negative, got %d", c.Actor.MaxInboxSize)
	}
	if c.Actor.Throughput < 0 {
		return errs.ErrInvalidConfigField("actor.throughput", "must not be negative, got %d", c.Actor.Throughput)
	}
	switch c.Actor.Dispatcher.Type {
	case DispatcherGoroutine:
	case DispatcherPool:
		if c.Actor.Dispatcher.PoolSize <= 0 {
			return errs.ErrInvalidConfigField("actor.dispatcher.poolSize", "must be positive, got %d", c.Actor.Dispatcher.PoolSize)
		}
	default:
		return errs.ErrInvalidConfigField("actor.dispatcher.type", "unknown dispatcher %q", c.Actor.Dispatcher.Type)
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return errs.ErrInvalidConfigField("metrics.address", "required when metrics are enabled")
	}
	return nil
}
