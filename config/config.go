package config

import (
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type AuthConfig struct {
	AccessTokenTTLMinutes int `mapstructure:"access_token_ttl_minutes"`
	RefreshTokenTTLHours  int `mapstructure:"refresh_token_ttl_hours"`
}

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
}

var vp *viper.Viper

func LoadConfig() (Config, error) {
	vp = viper.New()

	var config Config

	vp.SetConfigName("config")
	vp.SetConfigType("json")
	vp.AddConfigPath("config")

	vp.SetDefault("server.port", "8080")
	vp.SetDefault("auth.access_token_ttl_minutes", 60)
	vp.SetDefault("auth.refresh_token_ttl_hours", 24*7)

	err := vp.ReadInConfig()
	if err != nil {
		return Config{}, err
	}

	err = vp.Unmarshal(&config)
	if err != nil {
		return Config{}, err
	}

	return config, nil
}
