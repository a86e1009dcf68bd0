package ui

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	gpsapp "github.com/skobkin/gpsreader/internal/app"
	"github.com/skobkin/gpsreader/internal/config"
)

const (
	connectorOptionSerial = "Serial"
	connectorOptionTCP    = "TCP (gpsd)"
	connectorOptionReplay = "Replay file"

	autostartOptionWindow = "Open window"
	autostartOptionTray   = "Start in tray"
)

var defaultSerialBaudOptions = []string{"4800", "9600", "19200", "38400", "57600", "115200", "230400", "460800"}

func newSettingsTab(dep RuntimeDependencies, connStatusLabel *widget.Label) fyne.CanvasObject {
	current := dep.currentConfig()
	current.FillMissingDefaults()

	status := widget.NewLabel("")
	status.Wrapping = fyne.TextWrapWord

	connectorSelect := widget.NewSelect([]string{
		connectorOptionSerial,
		connectorOptionTCP,
		connectorOptionReplay,
	}, nil)
	connectorSelect.SetSelected(connectorOptionFromType(current.Receiver.Connector))

	serialPortSelect := widget.NewSelect(nil, nil)
	serialPortSelect.PlaceHolder = "Select serial port"
	serialPortSelect.SetSelected(current.Receiver.SerialPort)

	serialBaudSelect := widget.NewSelect(uniqueValues(append(defaultSerialBaudOptions, strconv.Itoa(current.Receiver.SerialBaud))), nil)
	serialBaudSelect.SetSelected(strconv.Itoa(current.Receiver.SerialBaud))

	hostEntry := widget.NewEntry()
	hostEntry.SetText(current.Receiver.Host)
	hostEntry.SetPlaceHolder("gpsd host or IP address")

	portEntry := widget.NewEntry()
	portEntry.SetText(strconv.Itoa(current.Receiver.Port))
	portEntry.SetPlaceHolder(strconv.Itoa(config.DefaultTCPPort))

	gpsdWatch := widget.NewCheck("Send gpsd WATCH request", nil)
	gpsdWatch.SetChecked(current.Receiver.GPSDWatch)

	replayEntry := widget.NewEntry()
	replayEntry.SetText(current.Receiver.ReplayFile)
	replayEntry.SetPlaceHolder("NMEA log file")

	audioEnabled := widget.NewCheck("Beep while the signal is lost", nil)
	audioEnabled.SetChecked(current.Alerts.AudioEnabled)

	notifyWhenFocused := widget.NewCheck("Notify while the window is focused", nil)
	notifyWhenFocused.SetChecked(current.Alerts.Notifications.NotifyWhenFocused)

	autostartEnabled := widget.NewCheck("Run on system startup", nil)
	autostartEnabled.SetChecked(current.UI.Autostart.Enabled)
	autostartMode := widget.NewSelect([]string{autostartOptionWindow, autostartOptionTray}, nil)
	autostartMode.SetSelected(autostartOptionFromMode(current.UI.Autostart.Mode))
	setAutostartModeEnabled := func(enabled bool) {
		if enabled {
			autostartMode.Enable()

			return
		}
		autostartMode.Disable()
	}
	autostartEnabled.OnChanged = setAutostartModeEnabled
	setAutostartModeEnabled(current.UI.Autostart.Enabled)

	levelSelect := widget.NewSelect([]string{"debug", "info", "warn", "error"}, nil)
	levelSelect.SetSelected(strings.ToLower(current.Logging.Level))
	if levelSelect.Selected == "" {
		levelSelect.SetSelected("info")
	}
	logToFile := widget.NewCheck("", nil)
	logToFile.SetChecked(current.Logging.LogToFile)

	listPorts := dep.Platform.ListSerialPorts
	refreshPorts := func() {
		selectedPort := strings.TrimSpace(serialPortSelect.Selected)
		var ports []string
		if listPorts != nil {
			detected, err := listPorts()
			if err != nil {
				status.SetText("Failed to list serial ports: " + err.Error())

				return
			}
			ports = detected
		}
		sort.Strings(ports)

		if currentPort := strings.TrimSpace(current.Receiver.SerialPort); currentPort != "" {
			ports = append(ports, currentPort)
		}
		if selectedPort != "" {
			ports = append(ports, selectedPort)
		}
		ports = uniqueValues(ports)
		serialPortSelect.SetOptions(ports)

		if selectedPort != "" {
			serialPortSelect.SetSelected(selectedPort)
		} else if current.Receiver.SerialPort != "" {
			serialPortSelect.SetSelected(current.Receiver.SerialPort)
		}

		if len(ports) == 0 {
			status.SetText("No serial ports detected")

			return
		}
		status.SetText("")
	}

	refreshPortsButton := widget.NewButton("Refresh", refreshPorts)
	serialPortRow := container.NewBorder(nil, nil, nil, refreshPortsButton, serialPortSelect)

	serialPortLabel := widget.NewLabel("Serial Port")
	serialBaudLabel := widget.NewLabel("Serial Baud")
	hostLabel := widget.NewLabel("Host")
	portLabel := widget.NewLabel("Port")
	gpsdWatchLabel := widget.NewLabel("")
	replayLabel := widget.NewLabel("Replay File")

	connectionFields := container.New(layout.NewFormLayout(),
		widget.NewLabel("Connector"), connectorSelect,
		serialPortLabel, serialPortRow,
		serialBaudLabel, serialBaudSelect,
		hostLabel, hostEntry,
		portLabel, portEntry,
		gpsdWatchLabel, gpsdWatch,
		replayLabel, replayEntry,
	)

	setConnectorFields := func(connector config.ConnectorType) {
		setVisible(connector == config.ConnectorSerial, serialPortLabel, serialPortRow, serialBaudLabel, serialBaudSelect)
		setVisible(connector == config.ConnectorTCP, hostLabel, hostEntry, portLabel, portEntry, gpsdWatchLabel, gpsdWatch)
		setVisible(connector == config.ConnectorReplay, replayLabel, replayEntry)
	}
	connectorSelect.OnChanged = func(value string) {
		next := connectorTypeFromOption(value)
		setConnectorFields(next)
		if next == config.ConnectorSerial {
			refreshPorts()

			return
		}
		status.SetText("")
	}
	setConnectorFields(current.Receiver.Connector)
	if current.Receiver.Connector == config.ConnectorSerial {
		refreshPorts()
	}

	saveButton := widget.NewButton("Save", func() {
		connector := connectorTypeFromOption(connectorSelect.Selected)

		cfg := current
		cfg.Receiver.Connector = connector
		switch connector {
		case config.ConnectorSerial:
			baud, err := parseSerialBaud(serialBaudSelect.Selected)
			if err != nil {
				status.SetText("Save failed: " + err.Error())

				return
			}
			cfg.Receiver.SerialPort = strings.TrimSpace(serialPortSelect.Selected)
			cfg.Receiver.SerialBaud = baud
		case config.ConnectorTCP:
			port, err := parseTCPPort(portEntry.Text)
			if err != nil {
				status.SetText("Save failed: " + err.Error())

				return
			}
			cfg.Receiver.Host = strings.TrimSpace(hostEntry.Text)
			cfg.Receiver.Port = port
			cfg.Receiver.GPSDWatch = gpsdWatch.Checked
		case config.ConnectorReplay:
			cfg.Receiver.ReplayFile = strings.TrimSpace(replayEntry.Text)
		}
		cfg.Alerts.AudioEnabled = audioEnabled.Checked
		cfg.Alerts.Notifications.NotifyWhenFocused = notifyWhenFocused.Checked
		cfg.Logging.Level = levelSelect.Selected
		cfg.Logging.LogToFile = logToFile.Checked
		cfg.UI.Autostart.Enabled = autostartEnabled.Checked
		cfg.UI.Autostart.Mode = autostartModeFromOption(autostartMode.Selected)

		if dep.Actions.OnSave == nil {
			status.SetText("Save failed: saving is not available")

			return
		}
		if err := dep.Actions.OnSave(cfg); err != nil {
			var warning *gpsapp.AutostartSyncWarning
			if errors.As(err, &warning) {
				current = cfg
				status.SetText("Saved with warning: " + warning.Error())

				return
			}
			status.SetText("Save failed: " + err.Error())

			return
		}
		current = cfg
		status.SetText("Saved")
	})
	saveButton.Importance = widget.HighImportance

	alertsForm := widget.NewForm(
		widget.NewFormItem("Alarm", audioEnabled),
		widget.NewFormItem("Notifications", notifyWhenFocused),
	)
	startupForm := widget.NewForm(
		widget.NewFormItem("Autostart", autostartEnabled),
		widget.NewFormItem("Start mode", autostartMode),
	)
	loggingForm := widget.NewForm(
		widget.NewFormItem("Log Level", levelSelect),
		widget.NewFormItem("Log to file", logToFile),
	)

	connectionBlock := widget.NewCard("Receiver", "", container.NewVBox(
		connStatusLabel,
		connectionFields,
	))
	alertsBlock := widget.NewCard("Alerts", "", alertsForm)
	startupBlock := widget.NewCard("Startup", "", startupForm)
	loggingBlock := widget.NewCard("Logging", "", loggingForm)

	content := container.NewVBox(
		connectionBlock,
		alertsBlock,
		startupBlock,
		loggingBlock,
		saveButton,
		widget.NewLabel("Version: "+gpsapp.BuildVersionWithDate()),
		status,
	)

	return container.NewVScroll(content)
}

func uniqueValues(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		unique = append(unique, trimmed)
	}

	return unique
}

func connectorOptionFromType(connector config.ConnectorType) string {
	switch connector {
	case config.ConnectorTCP:
		return connectorOptionTCP
	case config.ConnectorReplay:
		return connectorOptionReplay
	default:
		return connectorOptionSerial
	}
}

func connectorTypeFromOption(value string) config.ConnectorType {
	switch strings.TrimSpace(value) {
	case connectorOptionTCP:
		return config.ConnectorTCP
	case connectorOptionReplay:
		return config.ConnectorReplay
	default:
		return config.ConnectorSerial
	}
}

func autostartOptionFromMode(mode string) string {
	if mode == config.AutostartModeTray {
		return autostartOptionTray
	}

	return autostartOptionWindow
}

func autostartModeFromOption(value string) string {
	if strings.TrimSpace(value) == autostartOptionTray {
		return config.AutostartModeTray
	}

	return config.AutostartModeWindow
}

func parseSerialBaud(value string) (int, error) {
	baud, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid serial baud %q", value)
	}
	if baud <= 0 {
		return 0, fmt.Errorf("serial baud must be positive")
	}

	return baud, nil
}

func parseTCPPort(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return config.DefaultTCPPort, nil
	}
	port, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid tcp port %q", value)
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("tcp port out of range: %d", port)
	}

	return port, nil
}
