// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
)

// ClientConfig 客户端连接配置
type ClientConfig struct {
	ApiBaseURL     string        `toml:"apiBaseURL"`     // REST 接口根地址，如 "http://127.0.0.1:8000"
	WsURL          string        `toml:"wsURL"`          // 聊天网关地址，如 "ws://127.0.0.1:8000/ws/chat"
	UserId         int64         `toml:"userId"`         // 当前用户 ID
	UserName       string        `toml:"userName"`       // 当前用户昵称
	GroupId        int64         `toml:"groupId"`        // 默认打开的群组
	RequestTimeout time.Duration `toml:"requestTimeout"` // 单次 REST 请求超时（秒）
}

// ChatConfig 聊天连接的重连策略
type ChatConfig struct {
	ReconnectDelay       time.Duration `toml:"reconnectDelay"`       // 首次重连间隔（秒）
	MaxReconnectAttempts int           `toml:"maxReconnectAttempts"` // 最大连续重连次数，0 表示不限
	BackoffFactor        float64       `toml:"backoffFactor"`        // 退避倍数，<=1 表示固定间隔
	MaxReconnectDelay    time.Duration `toml:"maxReconnectDelay"`    // 退避上限（秒）
}

// CredentialConfig 凭证存储配置
type CredentialConfig struct {
	Store       string `toml:"store"`       // "memory" 或 "redis"
	KeyPrefix   string `toml:"keyPrefix"`   // redis key 前缀
	AccessToken string `toml:"accessToken"` // 启动时预置的访问令牌（可选）
	Password    string `toml:"password"`    // 无令牌时用于 /login 的密码（开发环境）
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host"`     // Redis 服务器地址
	Port     int    `toml:"port"`     // Redis 端口，默认 6379
	Password string `toml:"password"` // Redis 密码，无密码留空
	Db       int    `toml:"db"`       // Redis 数据库编号，默认 0
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// GatewayConfig 本地开发网关配置
type GatewayConfig struct {
	Host        string `toml:"host"`        // 监听地址
	Port        int    `toml:"port"`        // 监听端口
	Storage     string `toml:"storage"`     // "memory" 或 "mysql"
	MessageMode string `toml:"messageMode"` // "channel" 或 "kafka"
	TLSRedirect bool   `toml:"tlsRedirect"` // 是否启用 HTTP -> HTTPS 重定向
	SeedFile    string `toml:"seedFile"`    // memory 存储的初始数据（TOML）
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

// KafkaConfig Kafka 消息队列配置
type KafkaConfig struct {
	HostPort  string        `toml:"hostPort"`  // Kafka 服务器地址，如 "localhost:9092"
	ChatTopic string        `toml:"chatTopic"` // 聊天事件主题
	GroupID   string        `toml:"groupId"`   // 消费组，每个网关节点需不同
	Timeout   time.Duration `toml:"timeout"`   // 超时时间（秒）
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret            string `toml:"secret"`            // JWT 签名密钥
	AccessTokenExpiry int    `toml:"accessTokenExpiry"` // Access Token 有效期（分钟）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 节点 ID，范围 0-1023
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	ClientConfig     `toml:"clientConfig"`
	ChatConfig       `toml:"chatConfig"`
	CredentialConfig `toml:"credentialConfig"`
	RedisConfig      `toml:"redisConfig"`
	LogConfig        `toml:"logConfig"`
	GatewayConfig    `toml:"gatewayConfig"`
	MysqlConfig      `toml:"mysqlConfig"`
	KafkaConfig      `toml:"kafkaConfig"`
	JWTConfig        `toml:"jwtConfig"`
	SnowflakeConfig  `toml:"snowflakeConfig"`
}

// config 全局配置单例，延迟加载
var config *Config

// searchPaths 候选配置文件路径（优先加载本地配置）
var searchPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml",
	"../../configs/config.toml",
}

// Default 返回带默认值的配置
func Default() *Config {
	return &Config{
		ClientConfig: ClientConfig{
			ApiBaseURL:     "http://127.0.0.1:8000",
			WsURL:          "ws://127.0.0.1:8000/ws/chat",
			RequestTimeout: 10,
		},
		ChatConfig: ChatConfig{
			ReconnectDelay: 5,
			BackoffFactor:  1,
		},
		CredentialConfig: CredentialConfig{
			Store:     "memory",
			KeyPrefix: "kama_client:",
		},
		RedisConfig: RedisConfig{Host: "127.0.0.1", Port: 6379},
		LogConfig:   LogConfig{LogPath: "./logs", Level: "info"},
		GatewayConfig: GatewayConfig{
			Host:        "127.0.0.1",
			Port:        8000,
			Storage:     "memory",
			MessageMode: "channel",
		},
		KafkaConfig: KafkaConfig{ChatTopic: "chat_room_events", GroupID: "gateway", Timeout: 1},
		JWTConfig:   JWTConfig{Secret: "kama-dev-secret", AccessTokenExpiry: 60},
		SnowflakeConfig: SnowflakeConfig{
			MachineID: 1,
		},
	}
}

// Load 从指定路径加载配置，未出现的字段保留默认值
func Load(path string) (*Config, error) {
	conf := Default()
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return conf, nil
}

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	for _, path := range searchPaths {
		if conf, err := Load(path); err == nil {
			config = conf
			return nil
		}
	}
	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件，找不到文件时使用默认值
func GetConfig() *Config {
	if config == nil {
		if err := LoadConfig(); err != nil {
			config = Default()
		}
	}
	return config
}

// SetConfig 替换全局配置（命令行指定配置文件时使用）
func SetConfig(conf *Config) {
	config = conf
}

// Seconds 将配置中以秒为单位的整数时长转换为 time.Duration
// 配置文件中的时长字段按秒书写，例如 reconnectDelay = 5
func Seconds(d time.Duration) time.Duration {
	return d * time.Second
}
