// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Webhook WebhookConfig `mapstructure:"webhook"`
	History HistoryConfig `mapstructure:"history"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// StorageConfig 存储本地持久化后端的配置。
// backend 可选 "bolt"（默认，本地单文件）或 "redis"。
type StorageConfig struct {
	Backend string      `mapstructure:"backend"`
	Bolt    BoltConfig  `mapstructure:"bolt"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// BoltConfig 存储 BoltDB 单文件存储的配置。
type BoltConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WebhookConfig 存储自动化端点相关的配置。
type WebhookConfig struct {
	DefaultURL     string `mapstructure:"default_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// HistoryConfig 存储历史记录相关的配置。
type HistoryConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("读取配置文件失败: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}

	applyDefaults()
}

// applyDefaults 为缺失的配置项填充默认值。
func applyDefaults() {
	if Conf.Server.Port == "" {
		Conf.Server.Port = "8080"
	}
	if Conf.Server.Mode == "" {
		Conf.Server.Mode = "debug"
	}
	if Conf.Storage.Backend == "" {
		Conf.Storage.Backend = "bolt"
	}
	if Conf.Storage.Bolt.Path == "" {
		Conf.Storage.Bolt.Path = "./data/console.bolt"
	}
	if Conf.Webhook.TimeoutSeconds <= 0 {
		Conf.Webhook.TimeoutSeconds = 60
	}
	if Conf.History.Capacity <= 0 {
		Conf.History.Capacity = 20
	}
}
