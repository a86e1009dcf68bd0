package connectors

const (
	TopicConnStatus       = "conn.status"
	TopicReading          = "gnss.reading"
	TopicAuthorization    = "gnss.authorization"
	TopicRawSentence      = "raw.sentence"
	TopicSignalQuality    = "signal.quality"
	TopicSignalPermission = "signal.permission"
)
