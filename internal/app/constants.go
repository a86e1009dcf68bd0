package app

const (
	Name           = "gpsreader"
	DisplayName    = "GPS Reader"
	ConfigFilename = "config.json"
	LogFilename    = "app.log"
	ReplayDir      = "replays"
)
