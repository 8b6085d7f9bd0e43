package ioc

import (
	"github.com/spf13/viper"

	"github.com/quantora/coinsentry/internal/service/notification/telegram"
)

func InitTelegramNotifier() *telegram.Notifier {
	var cfg telegram.Config
	if err := viper.UnmarshalKey("notify.telegram", &cfg); err != nil {
		panic(err)
	}

	notifier, err := telegram.NewNotifier(cfg)
	if err != nil {
		panic(err)
	}
	return notifier
}
