package ioc

import (
	"github.com/spf13/viper"

	"github.com/quantora/coinsentry/internal/service/flow/httpflow"
)

func InitFlowCli() *httpflow.Service {
	type Config struct {
		BaseUrl string `mapstructure:"base_url"`
		ApiKey  string `mapstructure:"api_key"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("flow", &cfg); err != nil {
		panic(err)
	}

	if cfg.BaseUrl == "" {
		panic("no flow api base_url set")
	}
	return httpflow.NewService(cfg.BaseUrl, cfg.ApiKey)
}

func FlowEnabled() bool {
	return viper.GetString("flow.base_url") != ""
}
