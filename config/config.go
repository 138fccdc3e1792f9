package config

import (
	"github.com/spf13/viper"
	"time"
)

type Config struct {
	Server struct {
		Port    string        `mapstructure:"port"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"server"`

	Database struct {
		URI  string `mapstructure:"uri"`
		Name string `mapstructure:"name"`
	} `mapstructure:"database"`

	// Auth 部分包含签发登录令牌所需的配置。
	// JWTSecret 不应提交到仓库，通过环境变量 AUTH_JWTSECRET 注入。
	Auth struct {
		JWTSecret string        `mapstructure:"jwtSecret"`
		TokenTTL  time.Duration `mapstructure:"tokenTTL"`
	} `mapstructure:"auth"`

	// Uploads 部分描述本地上传目录。图片内容本身对核心逻辑是不透明的，
	// 这里只负责告诉 blob 存储把文件放在哪。
	Uploads struct {
		Dir           string `mapstructure:"dir"`
		MaxUploadSize int64  `mapstructure:"maxUploadSize"`
	} `mapstructure:"uploads"`

	Logger struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logger"`
}

var C *Config

// LoadConfig 从指定目录读取 config.yaml 并填充全局配置 C。
func LoadConfig(path string) (err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	// 未在 config.yaml 中给出的值使用以下默认值
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.timeout", "15s")
	v.SetDefault("auth.tokenTTL", "168h")
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.maxUploadSize", 10<<20)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")

	if err = v.ReadInConfig(); err != nil {
		return
	}

	err = v.Unmarshal(&C)
	return
}
