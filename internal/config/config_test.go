package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppConfigFillMissingDefaults(t *testing.T) {
	cfg := AppConfig{}
	cfg.FillMissingDefaults()

	if cfg.Receiver.Connector != ConnectorSerial {
		t.Fatalf("expected default connector %q, got %q", ConnectorSerial, cfg.Receiver.Connector)
	}
	if cfg.Receiver.SerialBaud != DefaultSerialBaud {
		t.Fatalf("expected default serial baud %d, got %d", DefaultSerialBaud, cfg.Receiver.SerialBaud)
	}
	if cfg.Receiver.Port != DefaultTCPPort {
		t.Fatalf("expected default tcp port %d, got %d", DefaultTCPPort, cfg.Receiver.Port)
	}
	if cfg.Receiver.UERE != DefaultUERE {
		t.Fatalf("expected default uere %v, got %v", DefaultUERE, cfg.Receiver.UERE)
	}
	if cfg.Signal.StaleThreshold() != 8*time.Second {
		t.Fatalf("expected 8s stale threshold, got %s", cfg.Signal.StaleThreshold())
	}
	if cfg.Signal.CheckInterval() != time.Second {
		t.Fatalf("expected 1s check interval, got %s", cfg.Signal.CheckInterval())
	}
	if cfg.Alerts.BeepPeriod() != 1500*time.Millisecond {
		t.Fatalf("expected default beep period, got %s", cfg.Alerts.BeepPeriod())
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != LogFormatText {
		t.Fatalf("expected default log format text, got %q", cfg.Logging.Format)
	}
}

func TestFillMissingDefaultsNormalizesValues(t *testing.T) {
	cfg := AppConfig{
		Receiver: ReceiverConfig{Connector: " TCP "},
		Logging:  LoggingConfig{Format: "JSON"},
	}
	cfg.FillMissingDefaults()

	if cfg.Receiver.Connector != ConnectorTCP {
		t.Fatalf("expected normalized connector tcp, got %q", cfg.Receiver.Connector)
	}
	if cfg.Logging.Format != LogFormatJSON {
		t.Fatalf("expected normalized json format, got %q", cfg.Logging.Format)
	}
}

func TestDefaultEnablesAlerts(t *testing.T) {
	cfg := Default()
	if !cfg.Alerts.AudioEnabled {
		t.Fatalf("expected audio alarm to be enabled by default")
	}
	if cfg.Alerts.Notifications.NotifyWhenFocused {
		t.Fatalf("expected notify_when_focused to be disabled by default")
	}
	events := cfg.Alerts.Notifications.Events
	if !events.SignalLost || !events.SignalRestored || !events.ConnectionStatus {
		t.Fatalf("expected notification types to be enabled by default, got %+v", events)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load missing config: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadPreservesExplicitFalseValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{
  "receiver": {
    "connector": "tcp",
    "host": "127.0.0.1"
  },
  "alerts": {
    "audio_enabled": false,
    "notifications": {
      "events": {
        "signal_lost": false,
        "signal_restored": false,
        "connection_status": false
      }
    }
  }
}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Alerts.AudioEnabled {
		t.Fatalf("expected audio_enabled=false to be preserved")
	}
	events := cfg.Alerts.Notifications.Events
	if events.SignalLost || events.SignalRestored || events.ConnectionStatus {
		t.Fatalf("expected explicit false notification values, got %+v", events)
	}
	if cfg.Receiver.Port != DefaultTCPPort {
		t.Fatalf("expected default port to be filled, got %d", cfg.Receiver.Port)
	}
	if cfg.Signal.StaleAfterMS != DefaultStaleAfterMS {
		t.Fatalf("expected default stale threshold, got %d", cfg.Signal.StaleAfterMS)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestValidate(t *testing.T) {
	valid := func(mutate func(*AppConfig)) AppConfig {
		cfg := Default()
		cfg.Receiver.SerialPort = "/dev/ttyACM0"
		mutate(&cfg)

		return cfg
	}

	tests := []struct {
		name    string
		cfg     AppConfig
		wantErr bool
	}{
		{name: "serial ok", cfg: valid(func(*AppConfig) {})},
		{name: "serial without port", cfg: valid(func(c *AppConfig) { c.Receiver.SerialPort = " " }), wantErr: true},
		{name: "serial bad baud", cfg: valid(func(c *AppConfig) { c.Receiver.SerialBaud = 0 }), wantErr: true},
		{name: "tcp ok", cfg: valid(func(c *AppConfig) {
			c.Receiver.Connector = ConnectorTCP
			c.Receiver.Host = "localhost"
		})},
		{name: "tcp without host", cfg: valid(func(c *AppConfig) { c.Receiver.Connector = ConnectorTCP }), wantErr: true},
		{name: "tcp bad port", cfg: valid(func(c *AppConfig) {
			c.Receiver.Connector = ConnectorTCP
			c.Receiver.Host = "localhost"
			c.Receiver.Port = 70000
		}), wantErr: true},
		{name: "replay without file", cfg: valid(func(c *AppConfig) { c.Receiver.Connector = ConnectorReplay }), wantErr: true},
		{name: "unknown connector", cfg: valid(func(c *AppConfig) { c.Receiver.Connector = "bluetooth" }), wantErr: true},
		{name: "non-positive uere", cfg: valid(func(c *AppConfig) { c.Receiver.UERE = 0 }), wantErr: true},
		{name: "interval above threshold", cfg: valid(func(c *AppConfig) { c.Signal.CheckIntervalMS = 9000 }), wantErr: true},
	}

	for _, tc := range tests {
		err := tc.cfg.Validate()
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Receiver.Connector = ConnectorReplay
	cfg.Receiver.ReplayFile = "/tmp/drive.nmea"
	cfg.Alerts.AudioEnabled = false
	cfg.Signal.StaleAfterMS = 12000

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed, stat err: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if loaded != cfg {
		t.Fatalf("expected %+v, got %+v", cfg, loaded)
	}
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := Save(path, Default()); err == nil {
		t.Fatalf("expected validation error for missing serial port")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no config file to be written")
	}
}

func TestAutostartModeNormalization(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "", want: AutostartModeWindow},
		{raw: "window", want: AutostartModeWindow},
		{raw: " TRAY ", want: AutostartModeTray},
		{raw: "hidden", want: AutostartModeTray},
		{raw: "fullscreen", want: AutostartModeWindow},
	}

	for _, tc := range tests {
		cfg := Default()
		cfg.UI.Autostart.Mode = tc.raw
		cfg.FillMissingDefaults()
		if cfg.UI.Autostart.Mode != tc.want {
			t.Fatalf("mode %q: expected %q, got %q", tc.raw, tc.want, cfg.UI.Autostart.Mode)
		}
	}
}
