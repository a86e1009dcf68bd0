package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/skobkin/gpsreader/internal/app"
	"github.com/skobkin/gpsreader/internal/bus"
	"github.com/skobkin/gpsreader/internal/config"
	"github.com/skobkin/gpsreader/internal/connectors"
	"github.com/skobkin/gpsreader/internal/domain"
	"github.com/skobkin/gpsreader/internal/notifications"
)

const maxLinePreviewLen = 82

type cliFlags struct {
	connector      string
	serialPort     string
	baud           int
	host           string
	tcpPort        int
	noWatch        bool
	replay         string
	replayInterval time.Duration
	uere           float64
	listenFor      time.Duration
	noAudio        bool
	notify         bool
	rawSentences   bool
	logLevel       string
}

func main() {
	if err := run(); err != nil {
		slog.Error("run debug tool", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var flags cliFlags
	flag.StringVar(&flags.connector, "connector", "", "receiver connector: serial, tcp or replay")
	flag.StringVar(&flags.serialPort, "port", "", "serial port, e.g. /dev/ttyACM0")
	flag.IntVar(&flags.baud, "baud", 0, "serial baud rate")
	flag.StringVar(&flags.host, "host", "", "gpsd or NMEA-over-TCP host")
	flag.IntVar(&flags.tcpPort, "tcp-port", 0, "TCP port (default 2947)")
	flag.BoolVar(&flags.noWatch, "no-watch", false, "do not send the gpsd WATCH request")
	flag.StringVar(&flags.replay, "replay", "", "NMEA log file to replay")
	flag.DurationVar(&flags.replayInterval, "replay-interval", 0, "delay between replayed fixes, e.g. 500ms")
	flag.Float64Var(&flags.uere, "uere", 0, "user-equivalent range error in meters")
	flag.DurationVar(&flags.listenFor, "listen-for", 0, "listen duration, e.g. 30s")
	flag.BoolVar(&flags.noAudio, "no-audio", false, "disable the signal-lost beep")
	flag.BoolVar(&flags.notify, "notify", false, "send desktop notifications")
	flag.BoolVar(&flags.rawSentences, "raw", false, "log every received NMEA sentence")
	flag.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := app.Options{
		Configure: func(cfg *config.AppConfig) {
			applyFlags(cfg, flags)
		},
	}

	rt, err := app.InitializeWithOptions(ctx, opts)
	if err != nil {
		return fmt.Errorf("initialize runtime: %w", err)
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil {
			slog.Warn("close runtime", "error", closeErr)
		}
	}()

	logger := rt.LogManager.Logger("cli")
	cfg := rt.CurrentConfig()
	logger.Info(
		"starting gpsreader debug",
		"version", app.BuildVersion(),
		"build_date", app.BuildDateYMD(),
		"connector", cfg.Receiver.Connector,
		"target", app.ConnectionTarget(cfg.Receiver),
	)

	if flags.notify {
		notifier := app.NewNotificationService(
			rt.Bus,
			rt.CurrentConfig,
			func() bool { return false },
			notifications.NewBeeepSender(rt.LogManager.Logger("notifications")),
			rt.LogManager.Logger("app.notifications"),
		)
		notifier.Start(ctx)
	}

	watch(ctx, rt.Bus, logger, flags.rawSentences)

	if flags.listenFor > 0 {
		logger.Info("listen mode", "duration", flags.listenFor)
		select {
		case <-ctx.Done():
		case <-rt.Clock.After(flags.listenFor):
		}
		level, enabled := rt.CurrentQuality()
		logger.Info("final state", "quality", level, "bars", level.Bars(), "permission_enabled", enabled)

		return nil
	}

	logger.Info("listening until interrupt")
	<-ctx.Done()

	return nil
}

// applyFlags overlays non-zero command line values onto the loaded config.
// The debug tool never writes to the log file.
func applyFlags(cfg *config.AppConfig, flags cliFlags) {
	cfg.Logging.LogToFile = false
	if level := strings.TrimSpace(flags.logLevel); level != "" {
		cfg.Logging.Level = level
	}

	if connector := strings.TrimSpace(flags.connector); connector != "" {
		cfg.Receiver.Connector = config.ConnectorType(connector)
	}
	if port := strings.TrimSpace(flags.serialPort); port != "" {
		cfg.Receiver.SerialPort = port
		if flags.connector == "" {
			cfg.Receiver.Connector = config.ConnectorSerial
		}
	}
	if flags.baud > 0 {
		cfg.Receiver.SerialBaud = flags.baud
	}
	if host := strings.TrimSpace(flags.host); host != "" {
		cfg.Receiver.Host = host
		if flags.connector == "" {
			cfg.Receiver.Connector = config.ConnectorTCP
		}
	}
	if flags.tcpPort > 0 {
		cfg.Receiver.Port = flags.tcpPort
	}
	if flags.noWatch {
		cfg.Receiver.GPSDWatch = false
	}
	if replay := strings.TrimSpace(flags.replay); replay != "" {
		cfg.Receiver.ReplayFile = replay
		if flags.connector == "" {
			cfg.Receiver.Connector = config.ConnectorReplay
		}
	}
	if flags.replayInterval > 0 {
		cfg.Receiver.ReplayIntervalMS = int(flags.replayInterval / time.Millisecond)
	}
	if flags.uere > 0 {
		cfg.Receiver.UERE = flags.uere
	}
	if flags.noAudio {
		cfg.Alerts.AudioEnabled = false
	}
}

func watch(ctx context.Context, b bus.MessageBus, logger *slog.Logger, rawSentences bool) {
	topics := []string{
		connectors.TopicConnStatus,
		connectors.TopicSignalQuality,
		connectors.TopicSignalPermission,
		connectors.TopicReading,
	}
	if rawSentences {
		topics = append(topics, connectors.TopicRawSentence)
	}
	sub := b.Subscribe(topics...)

	go func() {
		defer b.Unsubscribe(sub, topics...)
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-sub:
				if !ok {
					return
				}
				logEvent(logger, raw)
			}
		}
	}()
}

func logEvent(logger *slog.Logger, raw any) {
	switch msg := raw.(type) {
	case connectors.ConnectionStatus:
		logger.Info("conn", "state", msg.State, "transport", msg.TransportName, "target", msg.Target, "error", msg.Err)
	case domain.QualityChange:
		logger.Info("quality", "level", msg.Level, "bars", msg.Level.Bars(), "previous", msg.Previous, "cause", msg.Cause)
	case domain.PermissionChange:
		logger.Info("permission", "state", msg.State, "enabled", msg.Enabled)
	case domain.Reading:
		logger.Debug("reading", "accuracy_m", msg.HorizontalAccuracy, "satellites", msg.Satellites, "hdop", msg.HDOP, "source", msg.Source)
	case connectors.RawSentence:
		logger.Info("nmea", "type", msg.Type, "line", previewLine(msg.Line))
	}
}

func previewLine(line string) string {
	line = strings.TrimSpace(line)
	if len(line) <= maxLinePreviewLen {
		return line
	}

	return line[:maxLinePreviewLen] + "..."
}
