package constants

// Outbound frame kinds
const (
	EventDriverConnect    = "driver_connect"
	EventPassengerConnect = "passenger_connect"
	EventDriverGPS        = "driver_gps"
	EventPassengerGPS     = "passenger_gps"
	EventDriverChat       = "driver_chat_message"
	EventPassengerChat    = "passenger_chat_message"
)

// Inbound frame kinds
const (
	EventError                = "error"
	EventDriverLocationUpdate = "driver_location_update"
	EventRideCancelled        = "ride_cancelled"
	EventRideCompleted        = "ride_completed"
	EventWalletUpdate         = "wallet_update"
)

// WebSocket error codes
const (
	ErrorInvalidFormat    = "invalid_format"
	ErrorValidationFailed = "validation_failed"
	ErrorUnauthorized     = "unauthorized"
	ErrorInternalError    = "internal_error"
	ErrorInvalidLocation  = "invalid_location"
	ErrorNotIdentified    = "not_identified"
)

// ErrorSeverity decides how much detail an error frame carries
type ErrorSeverity int

const (
	ErrorSeverityClient ErrorSeverity = iota
	ErrorSeverityServer
	ErrorSeveritySecurity
)

// CloseReasonMaxLen is the longest close reason a control frame can carry
const CloseReasonMaxLen = 123
