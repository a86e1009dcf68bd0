package app

import (
	"testing"

	"github.com/skobkin/gpsreader/internal/config"
	"github.com/skobkin/gpsreader/internal/connectors"
)

func TestTransportNameFromConnector(t *testing.T) {
	tests := []struct {
		name      string
		connector config.ConnectorType
		want      string
	}{
		{name: "serial", connector: config.ConnectorSerial, want: "serial"},
		{name: "tcp", connector: config.ConnectorTCP, want: "tcp"},
		{name: "replay", connector: config.ConnectorReplay, want: "replay"},
		{name: "unknown", connector: "custom", want: "custom"},
		{name: "empty", connector: "", want: "unknown"},
	}

	for _, tc := range tests {
		if got := TransportNameFromConnector(tc.connector); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestConnectionTarget(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ReceiverConfig
		want string
	}{
		{name: "serial", cfg: config.ReceiverConfig{Connector: config.ConnectorSerial, SerialPort: " /dev/ttyACM0 ", SerialBaud: 9600}, want: "/dev/ttyACM0"},
		{name: "tcp", cfg: config.ReceiverConfig{Connector: config.ConnectorTCP, Host: "192.168.1.10", Port: 2947}, want: "192.168.1.10:2947"},
		{name: "tcp ipv6", cfg: config.ReceiverConfig{Connector: config.ConnectorTCP, Host: "::1", Port: 10110}, want: "[::1]:10110"},
		{name: "tcp without host", cfg: config.ReceiverConfig{Connector: config.ConnectorTCP, Port: 2947}, want: ""},
		{name: "replay", cfg: config.ReceiverConfig{Connector: config.ConnectorReplay, ReplayFile: "/tmp/logs/drive.nmea"}, want: "drive.nmea"},
		{name: "unknown", cfg: config.ReceiverConfig{Connector: "custom"}, want: ""},
	}

	for _, tc := range tests {
		if got := ConnectionTarget(tc.cfg); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestConnectionStatusFromConfig(t *testing.T) {
	status := ConnectionStatusFromConfig(config.ReceiverConfig{
		Connector:  config.ConnectorSerial,
		SerialPort: "/dev/ttyACM2",
		SerialBaud: 9600,
	})

	if status.State != connectors.ConnectionStateConnecting {
		t.Fatalf("expected connecting state, got %q", status.State)
	}
	if status.TransportName != "serial" {
		t.Fatalf("expected serial transport name, got %q", status.TransportName)
	}
	if status.Target != "/dev/ttyACM2" {
		t.Fatalf("expected serial target, got %q", status.Target)
	}

	idle := ConnectionStatusFromConfig(config.ReceiverConfig{Connector: config.ConnectorTCP})
	if idle.State != connectors.ConnectionStateDisconnected {
		t.Fatalf("expected disconnected state without target, got %q", idle.State)
	}
}
