package ui

import (
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	gpsapp "github.com/skobkin/gpsreader/internal/app"
	"github.com/skobkin/gpsreader/internal/config"
	"github.com/skobkin/gpsreader/internal/connectors"
	"github.com/skobkin/gpsreader/internal/resources"
)

type connectionStatusPresenter struct {
	window       fyne.Window
	statusLabels []*widget.Label
	statusIcon   *widget.Icon

	mu      sync.RWMutex
	current connectors.ConnectionStatus
}

func newConnectionStatusPresenter(
	window fyne.Window,
	initialStatus connectors.ConnectionStatus,
	statusLabels ...*widget.Label,
) *connectionStatusPresenter {
	presenter := &connectionStatusPresenter{
		window:       window,
		statusLabels: statusLabels,
		statusIcon:   widget.NewIcon(resources.UIIconResource(connStatusIcon(initialStatus))),
		current:      initialStatus,
	}
	presenter.applyUI(initialStatus)

	return presenter
}

func (p *connectionStatusPresenter) StatusIcon() *widget.Icon {
	return p.statusIcon
}

func (p *connectionStatusPresenter) Set(status connectors.ConnectionStatus) {
	p.mu.Lock()
	p.current = status
	p.mu.Unlock()
	p.applyUI(status)
}

func (p *connectionStatusPresenter) CurrentStatus() connectors.ConnectionStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.current
}

func (p *connectionStatusPresenter) applyUI(status connectors.ConnectionStatus) {
	if p.window != nil {
		p.window.SetTitle(formatWindowTitle(status))
	}
	text := formatConnStatus(status)
	for _, label := range p.statusLabels {
		if label != nil {
			label.SetText(text)
		}
	}
	if p.statusIcon != nil {
		p.statusIcon.SetResource(resources.UIIconResource(connStatusIcon(status)))
	}
}

func formatConnStatus(status connectors.ConnectionStatus) string {
	text := string(status.State)
	if transportName := transportDisplayName(status.TransportName); transportName != "" {
		text = transportName + " " + text
	}
	if target := strings.TrimSpace(status.Target); target != "" {
		text += " (" + target + ")"
	}
	if status.Err != "" {
		text += " (" + status.Err + ")"
	}

	return text
}

func transportDisplayName(name string) string {
	normalized := config.ConnectorType(strings.ToLower(strings.TrimSpace(name)))
	switch normalized {
	case config.ConnectorSerial, config.ConnectorTCP, config.ConnectorReplay:
		return connectorOptionFromType(normalized)
	default:
		return strings.TrimSpace(name)
	}
}

func formatWindowTitle(status connectors.ConnectionStatus) string {
	return fmt.Sprintf("%s %s - %s", gpsapp.DisplayName, gpsapp.BuildVersion(), formatConnStatus(status))
}

func connStatusIcon(status connectors.ConnectionStatus) resources.UIIcon {
	if status.State == connectors.ConnectionStateConnected {
		return resources.UIIconConnected
	}

	return resources.UIIconDisconnected
}

func resolveInitialConnStatus(dep RuntimeDependencies) connectors.ConnectionStatus {
	if dep.Data.CurrentConnStatus != nil {
		if status, ok := dep.Data.CurrentConnStatus(); ok {
			return status
		}
	}

	return gpsapp.ConnectionStatusFromConfig(dep.currentConfig().Receiver)
}
