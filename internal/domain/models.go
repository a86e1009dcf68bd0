package domain

import "time"

// Reading is a single position update reduced to what signal quality needs.
type Reading struct {
	// HorizontalAccuracy is the estimated position error radius in meters.
	// Negative means the receiver has no valid fix.
	HorizontalAccuracy float64
	Timestamp          time.Time

	Satellites int
	HDOP       float64
	Source     string
}

// AuthorizationState is the positioning access state reported by the provider.
type AuthorizationState string

const (
	AuthorizationNotDetermined AuthorizationState = "not_determined"
	AuthorizationDenied        AuthorizationState = "denied"
	AuthorizationAuthorized    AuthorizationState = "authorized"
)

func (s AuthorizationState) Enabled() bool {
	return s == AuthorizationAuthorized
}

// QualityCause tells what produced a quality change.
type QualityCause string

const (
	QualityCauseReading QualityCause = "reading"
	QualityCauseStale   QualityCause = "stale"
)

// QualityChange is published whenever the current quality level changes.
type QualityChange struct {
	Level    QualityLevel
	Previous QualityLevel
	Cause    QualityCause
	At       time.Time
}

// PermissionChange is published whenever the positioning permission changes.
type PermissionChange struct {
	State   AuthorizationState
	Enabled bool
	At      time.Time
}
