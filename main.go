package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/quantora/coinsentry/internal/repo"
	"github.com/quantora/coinsentry/internal/service/alert"
	"github.com/quantora/coinsentry/internal/service/exchange/binance"
	"github.com/quantora/coinsentry/internal/service/llm/gemini"
	"github.com/quantora/coinsentry/internal/service/metrics"
	"github.com/quantora/coinsentry/internal/service/monitor"
	"github.com/quantora/coinsentry/internal/service/notification"
	"github.com/quantora/coinsentry/ioc"
	"github.com/quantora/coinsentry/pkg/decimalx"
)

func initViper() {

	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.dev.yaml", "specify config file")
	pflag.Parse()

	viper.SetConfigFile(*file)
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s \n", err))
	}

	viper.SetDefault("alert.cooldown", time.Hour)
	viper.SetDefault("alert.max_alerts", alert.DefaultMaxAlerts)
	viper.SetDefault("monitor.price_interval", 30*time.Second)
	viper.SetDefault("monitor.technical_interval", time.Minute)
	viper.SetDefault("monitor.flow_interval", 5*time.Minute)
	viper.SetDefault("metrics.addr", ":9090")
}

type alertDef struct {
	Symbol string `mapstructure:"symbol"`
	Price  string `mapstructure:"price"`
	Type   string `mapstructure:"type"`
	Repeat bool   `mapstructure:"repeat"`
}

func seedAlerts(store *alert.Store) {
	var defs []alertDef
	if err := viper.UnmarshalKey("alerts", &defs); err != nil {
		panic(err)
	}
	for _, def := range defs {
		_, err := store.AddAlert(alert.Definition{
			Symbol: def.Symbol,
			Price:  decimalx.MustFromString(def.Price),
			Type:   alert.Type(def.Type),
			Repeat: def.Repeat,
		})
		if err != nil {
			panic(fmt.Errorf("bad alert definition %+v: %w", def, err))
		}
	}
}

func main() {
	initViper()

	db := ioc.InitDB()
	if err := repo.InitTables(db); err != nil {
		panic(err)
	}
	triggerRepo := repo.NewTriggerLogRepo(db)

	bian := ioc.InitBinanceCli()
	marketSvc := binance.NewMarketService(bian)

	coordinator := alert.NewCoordinator(notification.NewConsoleNotifier())
	if viper.GetBool("notify.telegram.enabled") {
		coordinator.AddNotifier(ioc.InitTelegramNotifier())
	}

	store := alert.NewStore(
		alert.WithDispatcher(coordinator),
		alert.WithTriggerLog(triggerRepo),
		alert.WithCooldown(viper.GetDuration("alert.cooldown")),
		alert.WithMaxAlerts(viper.GetInt("alert.max_alerts")),
	)
	seedAlerts(store)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	priceMon := monitor.NewPriceMonitor(marketSvc, store,
		monitor.WithPriceInterval(viper.GetDuration("monitor.price_interval")))
	priceMon.OnMovement(func(mv monitor.Movement) {
		body := fmt.Sprintf("⚡ %s moved %s%% within %s (%s → %s, trend %s)",
			mv.Symbol, mv.ChangePercent.Round(2), mv.Window, mv.From, mv.To, mv.Trend.Round(4))
		if ticker, err := marketSvc.Get24hrTicker(ctx, mv.Symbol); err == nil {
			body += fmt.Sprintf("\n24h: %s%% (high %s, low %s)",
				ticker.PriceChangePercent, ticker.HighPrice, ticker.LowPrice)
		}
		coordinator.Broadcast(ctx, mv.Symbol, body)
	})

	techOpts := []monitor.TechnicalOption{
		monitor.WithTechnicalInterval(viper.GetDuration("monitor.technical_interval")),
	}
	if ioc.GeminiEnabled() {
		llmSvc := gemini.NewService(ioc.InitGeminiCli())
		techOpts = append(techOpts, monitor.WithAnnotator(monitor.NewLLMAnnotator(llmSvc)))
	}
	techMon := monitor.NewTechnicalMonitor(marketSvc, techOpts...)
	techMon.OnSignal(func(sig monitor.Signal) {
		body := fmt.Sprintf("📈 %s signal %s at %s", sig.Symbol, sig.Kind, sig.Price)
		if sig.Commentary != "" {
			body += "\n" + sig.Commentary
		}
		coordinator.Broadcast(ctx, sig.Symbol, body)
	})

	for _, symbol := range viper.GetStringSlice("monitor.symbols") {
		priceMon.Watch(ctx, symbol)
		techMon.Watch(ctx, symbol)
	}

	var flowMon *monitor.FlowMonitor
	if ioc.FlowEnabled() {
		flowMon = monitor.NewFlowMonitor(ioc.InitFlowCli(),
			monitor.WithFlowInterval(viper.GetDuration("monitor.flow_interval")),
			monitor.WithFlowExchange(viper.GetString("flow.exchange")))
		flowMon.OnFlowAlert(func(fa monitor.FlowAlert) {
			coordinator.Broadcast(ctx, fa.Asset, fmt.Sprintf("⚠️ %s %s %s: 24h total %s",
				fa.Asset, fa.Direction, fa.Severity, fa.Total24h))
		})
		flowMon.OnWhaleAlert(func(wa monitor.WhaleAlert) {
			coordinator.Broadcast(ctx, wa.Asset, fmt.Sprintf("🐋 %s whale %s: volume %s in %d txs",
				wa.Asset, wa.Direction, wa.Volume, wa.Transactions))
		})
		for _, asset := range viper.GetStringSlice("monitor.flow_assets") {
			flowMon.Watch(ctx, asset)
		}
	}

	metrics.StartServer(viper.GetString("metrics.addr"))
	slog.Info("coinsentry started", "symbols", viper.GetStringSlice("monitor.symbols"))

	<-ctx.Done()
	slog.Info("shutting down")
	priceMon.Stop()
	techMon.Stop()
	if flowMon != nil {
		flowMon.Stop()
	}
}
