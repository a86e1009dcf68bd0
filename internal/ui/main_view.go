package ui

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/skobkin/gpsreader/internal/connectors"
	"github.com/skobkin/gpsreader/internal/domain"
	"github.com/skobkin/gpsreader/internal/resources"
)

const (
	signalBarsTextSize   = 48
	noSignalBannerText   = "No GPS signal"
	permissionDeniedText = "Access to the GPS receiver was denied. Check device permissions and the connection settings."
)

type mainView struct {
	content             fyne.CanvasObject
	signal              *signalView
	connStatusPresenter *connectionStatusPresenter
}

func buildMainView(
	dep RuntimeDependencies,
	window fyne.Window,
	initialStatus connectors.ConnectionStatus,
) mainView {
	statusLabel := widget.NewLabel("")
	statusLabel.Truncation = fyne.TextTruncateEllipsis
	settingsConnStatus := widget.NewLabel("")
	settingsConnStatus.Truncation = fyne.TextTruncateEllipsis
	connStatusPresenter := newConnectionStatusPresenter(window, initialStatus, statusLabel, settingsConnStatus)

	signal := newSignalView()
	level, enabled := domain.QualityUnknown, false
	if dep.Data.CurrentQuality != nil {
		level, enabled = dep.Data.CurrentQuality()
	}
	authorization := domain.AuthorizationNotDetermined
	if dep.Data.CurrentAuthorization != nil {
		authorization = dep.Data.CurrentAuthorization()
	}
	signal.SetPermission(authorization, enabled)
	signal.SetQuality(level)

	statusRow := container.NewBorder(nil, nil, connStatusPresenter.StatusIcon(), nil, statusLabel)
	signalTab := container.NewBorder(nil, statusRow, nil, nil, signal.Content())
	settingsTab := newSettingsTab(dep, settingsConnStatus)

	tabs := container.NewAppTabs(
		container.NewTabItemWithIcon("Signal", resources.UIIconResource(resources.UIIconSatellite), signalTab),
		container.NewTabItemWithIcon("Settings", theme.SettingsIcon(), settingsTab),
	)

	return mainView{
		content:             tabs,
		signal:              signal,
		connStatusPresenter: connStatusPresenter,
	}
}

// signalView shows the bar indicator, the no-signal banner and the
// permission warning.
type signalView struct {
	bars         *canvas.Text
	qualityLabel *widget.Label
	banner       *fyne.Container
	warning      *widget.Label
	content      fyne.CanvasObject

	mu                sync.Mutex
	level             domain.QualityLevel
	permissionEnabled bool
	authorization     domain.AuthorizationState
}

func newSignalView() *signalView {
	bars := canvas.NewText(signalBarsText(domain.QualityUnknown), theme.Color(theme.ColorNameForeground))
	bars.TextSize = signalBarsTextSize
	bars.Alignment = fyne.TextAlignCenter

	qualityLabel := widget.NewLabel(signalQualityLabel(domain.QualityUnknown))
	qualityLabel.Alignment = fyne.TextAlignCenter

	bannerBackground := canvas.NewRectangle(theme.Color(theme.ColorNameError))
	bannerText := canvas.NewText(noSignalBannerText, color.White)
	bannerText.TextStyle = fyne.TextStyle{Bold: true}
	bannerText.Alignment = fyne.TextAlignCenter
	banner := container.NewStack(bannerBackground, container.NewPadded(bannerText))
	banner.Hide()

	warning := widget.NewLabel(permissionDeniedText)
	warning.Wrapping = fyne.TextWrapWord
	warning.Importance = widget.DangerImportance
	warning.Hide()

	view := &signalView{
		bars:          bars,
		qualityLabel:  qualityLabel,
		banner:        banner,
		warning:       warning,
		level:         domain.QualityUnknown,
		authorization: domain.AuthorizationNotDetermined,
	}
	view.content = container.NewVBox(
		warning,
		banner,
		layout.NewSpacer(),
		bars,
		qualityLabel,
		layout.NewSpacer(),
	)

	return view
}

func (v *signalView) Content() fyne.CanvasObject {
	return v.content
}

func (v *signalView) SetQuality(level domain.QualityLevel) {
	v.mu.Lock()
	v.level = level
	v.mu.Unlock()
	v.apply()
}

func (v *signalView) SetPermission(state domain.AuthorizationState, enabled bool) {
	v.mu.Lock()
	v.authorization = state
	v.permissionEnabled = enabled
	v.mu.Unlock()
	v.apply()
}

func (v *signalView) Level() domain.QualityLevel {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.level
}

func (v *signalView) apply() {
	v.mu.Lock()
	level := v.level
	enabled := v.permissionEnabled
	authorization := v.authorization
	v.mu.Unlock()

	v.bars.Text = signalBarsText(level)
	v.bars.Color = theme.Color(signalThemeColorForQuality(level))
	v.bars.Refresh()
	v.qualityLabel.SetText(signalQualityLabel(level))
	setVisible(signalBannerVisible(level, enabled), v.banner)
	setVisible(permissionWarningVisible(authorization), v.warning)
}

func setVisible(visible bool, objects ...fyne.CanvasObject) {
	for _, object := range objects {
		if visible {
			object.Show()

			continue
		}
		object.Hide()
	}
}
