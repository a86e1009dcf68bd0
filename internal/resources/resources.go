package resources

import (
	_ "embed"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

//go:embed icons/app.svg
var appIcon []byte

//go:embed icons/tray_ok.svg
var trayOKIcon []byte

//go:embed icons/tray_lost.svg
var trayLostIcon []byte

//go:embed icons/connected.svg
var connectedIcon []byte

//go:embed icons/disconnected.svg
var disconnectedIcon []byte

//go:embed icons/satellite.svg
var satelliteIcon []byte

type UIIcon string

const (
	UIIconConnected    UIIcon = "connected"
	UIIconDisconnected UIIcon = "disconnected"
	UIIconSatellite    UIIcon = "satellite"
)

var (
	appIconResource  = fyne.NewStaticResource("resources/icons/app.svg", appIcon)
	trayOKResource   = fyne.NewStaticResource("resources/icons/tray_ok.svg", trayOKIcon)
	trayLostResource = fyne.NewStaticResource("resources/icons/tray_lost.svg", trayLostIcon)
)

// UI icons are monochrome and get recolored to the current theme foreground.
var uiIconResources = map[UIIcon]fyne.Resource{
	UIIconConnected:    theme.NewThemedResource(fyne.NewStaticResource("resources/icons/connected.svg", connectedIcon)),
	UIIconDisconnected: theme.NewThemedResource(fyne.NewStaticResource("resources/icons/disconnected.svg", disconnectedIcon)),
	UIIconSatellite:    theme.NewThemedResource(fyne.NewStaticResource("resources/icons/satellite.svg", satelliteIcon)),
}

func AppIconResource() fyne.Resource {
	return appIconResource
}

// TrayIconResource returns the tray icon for the current signal state.
func TrayIconResource(signalLost bool) fyne.Resource {
	if signalLost {
		return trayLostResource
	}

	return trayOKResource
}

func UIIconResource(icon UIIcon) fyne.Resource {
	if res, ok := uiIconResources[icon]; ok {
		return res
	}

	return uiIconResources[UIIconSatellite]
}
