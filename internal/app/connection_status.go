package app

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/skobkin/gpsreader/internal/config"
	"github.com/skobkin/gpsreader/internal/connectors"
)

func TransportNameFromConnector(connector config.ConnectorType) string {
	switch connector {
	case config.ConnectorSerial:
		return "serial"
	case config.ConnectorTCP:
		return "tcp"
	case config.ConnectorReplay:
		return "replay"
	default:
		if value := strings.TrimSpace(string(connector)); value != "" {
			return value
		}

		return "unknown"
	}
}

func ConnectionTarget(cfg config.ReceiverConfig) string {
	switch cfg.Connector {
	case config.ConnectorSerial:
		return strings.TrimSpace(cfg.SerialPort)
	case config.ConnectorTCP:
		host := strings.TrimSpace(cfg.Host)
		if host == "" {
			return ""
		}
		if cfg.Port <= 0 {
			return host
		}

		return net.JoinHostPort(host, fmt.Sprintf("%d", cfg.Port))
	case config.ConnectorReplay:
		file := strings.TrimSpace(cfg.ReplayFile)
		if file == "" {
			return ""
		}

		return filepath.Base(file)
	default:
		return ""
	}
}

func ConnectionStatusFromConfig(cfg config.ReceiverConfig) connectors.ConnectionStatus {
	status := connectors.ConnectionStatus{
		State:         connectors.ConnectionStateDisconnected,
		TransportName: TransportNameFromConnector(cfg.Connector),
		Target:        ConnectionTarget(cfg),
	}
	if status.Target != "" {
		status.State = connectors.ConnectionStateConnecting
	}

	return status
}
