package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ConnectorType identifies which receiver transport should be used.
type ConnectorType string

const (
	ConnectorSerial ConnectorType = "serial"
	ConnectorTCP    ConnectorType = "tcp"
	ConnectorReplay ConnectorType = "replay"

	DefaultSerialBaud       = 9600
	DefaultTCPPort          = 2947
	DefaultReplayIntervalMS = 1000
	// DefaultUERE is a typical user-equivalent range error of a consumer
	// GNSS receiver. Accuracy is estimated as HDOP times UERE.
	DefaultUERE = 5.0

	DefaultStaleAfterMS    = 8000
	DefaultCheckIntervalMS = 1000
	DefaultBeepPeriodMS    = 1500

	LogFormatText = "text"
	LogFormatJSON = "json"

	AutostartModeWindow = "window"
	AutostartModeTray   = "tray"
)

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level     string `json:"level"`
	Format    string `json:"format"`
	LogToFile bool   `json:"log_to_file"`
}

// ReceiverConfig contains connector-specific receiver parameters.
type ReceiverConfig struct {
	Connector        ConnectorType `json:"connector"`
	SerialPort       string        `json:"serial_port"`
	SerialBaud       int           `json:"serial_baud"`
	Host             string        `json:"host"`
	Port             int           `json:"port"`
	GPSDWatch        bool          `json:"gpsd_watch"`
	ReplayFile       string        `json:"replay_file"`
	ReplayIntervalMS int           `json:"replay_interval_ms"`
	UERE             float64       `json:"uere_meters"`
}

func (c ReceiverConfig) ReplayInterval() time.Duration {
	return time.Duration(c.ReplayIntervalMS) * time.Millisecond
}

// SignalConfig tunes no-signal detection.
type SignalConfig struct {
	StaleAfterMS    int `json:"stale_after_ms"`
	CheckIntervalMS int `json:"check_interval_ms"`
}

func (c SignalConfig) StaleThreshold() time.Duration {
	return time.Duration(c.StaleAfterMS) * time.Millisecond
}

func (c SignalConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalMS) * time.Millisecond
}

// AlertsConfig stores alarm and notification preferences.
type AlertsConfig struct {
	AudioEnabled  bool               `json:"audio_enabled"`
	BeepPeriodMS  int                `json:"beep_period_ms"`
	Notifications NotificationConfig `json:"notifications"`
}

func (c AlertsConfig) BeepPeriod() time.Duration {
	return time.Duration(c.BeepPeriodMS) * time.Millisecond
}

// NotificationConfig stores desktop notification preferences.
type NotificationConfig struct {
	NotifyWhenFocused bool                     `json:"notify_when_focused"`
	Events            NotificationEventsConfig `json:"events"`
}

// NotificationEventsConfig stores per-event notification toggles.
type NotificationEventsConfig struct {
	SignalLost       bool `json:"signal_lost"`
	SignalRestored   bool `json:"signal_restored"`
	ConnectionStatus bool `json:"connection_status"`
}

// AutostartConfig controls launch at login.
type AutostartConfig struct {
	Enabled bool `json:"enabled"`
	// Mode is either "window" or "tray". Tray mode starts hidden.
	Mode string `json:"mode"`
}

// UIConfig stores persistent UI preferences.
type UIConfig struct {
	StartHidden bool            `json:"start_hidden"`
	Autostart   AutostartConfig `json:"autostart"`
}

// AppConfig is the root persisted application configuration.
type AppConfig struct {
	Receiver ReceiverConfig `json:"receiver"`
	Signal   SignalConfig   `json:"signal"`
	Alerts   AlertsConfig   `json:"alerts"`
	Logging  LoggingConfig  `json:"logging"`
	UI       UIConfig       `json:"ui"`
}

func Default() AppConfig {
	return AppConfig{
		Receiver: ReceiverConfig{
			Connector:        ConnectorSerial,
			SerialPort:       "",
			SerialBaud:       DefaultSerialBaud,
			Host:             "",
			Port:             DefaultTCPPort,
			GPSDWatch:        true,
			ReplayFile:       "",
			ReplayIntervalMS: DefaultReplayIntervalMS,
			UERE:             DefaultUERE,
		},
		Signal: SignalConfig{
			StaleAfterMS:    DefaultStaleAfterMS,
			CheckIntervalMS: DefaultCheckIntervalMS,
		},
		Alerts: AlertsConfig{
			AudioEnabled: true,
			BeepPeriodMS: DefaultBeepPeriodMS,
			Notifications: NotificationConfig{
				NotifyWhenFocused: false,
				Events: NotificationEventsConfig{
					SignalLost:       true,
					SignalRestored:   true,
					ConnectionStatus: true,
				},
			},
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    LogFormatText,
			LogToFile: false,
		},
		UI: UIConfig{
			StartHidden: false,
			Autostart: AutostartConfig{
				Enabled: false,
				Mode:    AutostartModeWindow,
			},
		},
	}
}

func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path is resolved by app runtime and points to user config dir.
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config json: %w", err)
	}

	cfg.FillMissingDefaults()

	return cfg, nil
}

func (c *AppConfig) FillMissingDefaults() {
	c.Receiver.Connector = normalizeConnector(c.Receiver.Connector)
	if c.Receiver.SerialBaud <= 0 {
		c.Receiver.SerialBaud = DefaultSerialBaud
	}
	if c.Receiver.Port <= 0 {
		c.Receiver.Port = DefaultTCPPort
	}
	if c.Receiver.ReplayIntervalMS <= 0 {
		c.Receiver.ReplayIntervalMS = DefaultReplayIntervalMS
	}
	if c.Receiver.UERE <= 0 {
		c.Receiver.UERE = DefaultUERE
	}
	if c.Signal.StaleAfterMS <= 0 {
		c.Signal.StaleAfterMS = DefaultStaleAfterMS
	}
	if c.Signal.CheckIntervalMS <= 0 {
		c.Signal.CheckIntervalMS = DefaultCheckIntervalMS
	}
	if c.Alerts.BeepPeriodMS <= 0 {
		c.Alerts.BeepPeriodMS = DefaultBeepPeriodMS
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	c.Logging.Format = normalizeLogFormat(c.Logging.Format)
	c.UI.Autostart.Mode = normalizeAutostartMode(c.UI.Autostart.Mode)
}

func normalizeAutostartMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case AutostartModeTray, "background", "hidden":
		return AutostartModeTray
	default:
		return AutostartModeWindow
	}
}

func normalizeConnector(connector ConnectorType) ConnectorType {
	value := ConnectorType(strings.ToLower(strings.TrimSpace(string(connector))))
	if value == "" {
		return ConnectorSerial
	}

	return value
}

func normalizeLogFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case LogFormatJSON:
		return LogFormatJSON
	default:
		return LogFormatText
	}
}

func (c AppConfig) Validate() error {
	switch c.Receiver.Connector {
	case ConnectorSerial:
		if strings.TrimSpace(c.Receiver.SerialPort) == "" {
			return errors.New("serial port is required")
		}
		if c.Receiver.SerialBaud <= 0 {
			return errors.New("serial baud must be positive")
		}
	case ConnectorTCP:
		if strings.TrimSpace(c.Receiver.Host) == "" {
			return errors.New("tcp host is required")
		}
		if c.Receiver.Port <= 0 || c.Receiver.Port > 65535 {
			return fmt.Errorf("tcp port out of range: %d", c.Receiver.Port)
		}
	case ConnectorReplay:
		if strings.TrimSpace(c.Receiver.ReplayFile) == "" {
			return errors.New("replay file is required")
		}
	default:
		return fmt.Errorf("unknown connector: %s", c.Receiver.Connector)
	}
	if c.Receiver.UERE <= 0 {
		return errors.New("uere must be positive")
	}
	if c.Signal.StaleAfterMS <= 0 {
		return errors.New("stale threshold must be positive")
	}
	if c.Signal.CheckIntervalMS <= 0 {
		return errors.New("check interval must be positive")
	}
	if c.Signal.CheckIntervalMS > c.Signal.StaleAfterMS {
		return errors.New("check interval must not exceed stale threshold")
	}

	return nil
}

func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}
