package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MatusOllah/slogcolor"

	"github.com/kabili207/mesh-byos-daemon/pkg/byos"
	"github.com/kabili207/mesh-byos-daemon/pkg/config"
	"github.com/kabili207/mesh-byos-daemon/pkg/daemon"
	"github.com/kabili207/mesh-byos-daemon/pkg/models"
	"github.com/kabili207/mesh-byos-daemon/pkg/radio"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	testMode := flag.Bool("test", false, "connect, publish one snapshot, and exit")
	flag.Parse()

	logOpts := *slogcolor.DefaultOptions
	if *debug {
		logOpts.Level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slogcolor.NewHandler(os.Stderr, &logOpts)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading configuration", "error", err)
		os.Exit(1)
	}

	channels := make([]radio.ChannelDef, 0, len(cfg.Radio.Channels))
	for _, ch := range cfg.Radio.Channels {
		channels = append(channels, radio.ChannelDef{Name: ch.Name, Key: ch.Key, Role: ch.Role})
	}

	transport := radio.NewMQTTTransport(radio.MQTTOptions{
		BrokerURL: cfg.Radio.BrokerURL,
		Username:  cfg.Radio.Username,
		Password:  cfg.Radio.Password,
		TopicRoot: cfg.Radio.TopicRoot,
		Channels:  channels,
		Logger:    slog.Default(),
	})

	d := daemon.New(daemon.Options{
		Transport:      transport,
		Sink:           byos.NewClient(cfg.BYOSURL, slog.Default()),
		UpdateInterval: cfg.UpdateInterval,
		Device: models.DeviceInfo{
			Platform:         cfg.Device.Platform,
			MeshtasticDevice: cfg.Device.MeshtasticDevice,
		},
		Logger: slog.Default(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *testMode {
		slog.Info("running in test mode")
		if !d.RunOnce(ctx) {
			os.Exit(1)
		}
		slog.Info("test publish succeeded", "display", cfg.BYOSURL+"/display")
		return
	}

	if err := d.Run(ctx); err != nil {
		slog.Error("daemon terminated", "error", err)
		os.Exit(1)
	}
}
