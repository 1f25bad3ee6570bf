package constants

// TemporaryActorPrefix marks synthetic actor ids (guest / local testing)
// that take part in push but never in durable persistence
const TemporaryActorPrefix = "temp_"

// REST endpoints consumed by the persistence gateway
const (
	PathDriver          = "/api/drivers/%s"
	PathDriverLocation  = "/api/drivers/%s/location"
	PathDriverHeartbeat = "/api/drivers/%s/heartbeat"
	PathUser            = "/api/users/%s"
	PathUserLocation    = "/api/users/%s/location"
)
