package ui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"github.com/skobkin/gpsreader/internal/domain"
)

const (
	signalBarFilled = "●"
	signalBarEmpty  = "○"
)

// signalBarsText renders the level as filled and empty dots, e.g. "●●●○".
func signalBarsText(level domain.QualityLevel) string {
	if level == domain.QualityUnknown {
		return strings.Repeat(signalBarEmpty, domain.MaxBars)
	}
	filled := level.Bars()

	return strings.Repeat(signalBarFilled, filled) + strings.Repeat(signalBarEmpty, domain.MaxBars-filled)
}

func signalQualityLabel(level domain.QualityLevel) string {
	switch level {
	case domain.QualityNoSignal:
		return "No signal"
	case domain.QualityPoor:
		return "Poor"
	case domain.QualityAverage:
		return "Average"
	case domain.QualityGood:
		return "Good"
	case domain.QualityFull:
		return "Excellent"
	default:
		return "Waiting for receiver"
	}
}

func signalThemeColorForQuality(level domain.QualityLevel) fyne.ThemeColorName {
	switch level {
	case domain.QualityFull, domain.QualityGood:
		return theme.ColorNameSuccess
	case domain.QualityAverage:
		return theme.ColorNameWarning
	case domain.QualityPoor, domain.QualityNoSignal:
		return theme.ColorNameError
	default:
		return theme.ColorNameForeground
	}
}

// signalBannerVisible reports whether the "no signal" banner should show.
// Without permission there is nothing to monitor, so the banner stays hidden.
func signalBannerVisible(level domain.QualityLevel, permissionEnabled bool) bool {
	return permissionEnabled && level.Lost()
}

func permissionWarningVisible(state domain.AuthorizationState) bool {
	return state == domain.AuthorizationDenied
}
