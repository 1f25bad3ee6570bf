package constants

// NATS Subjects
const (
	// Location relay
	SubjectDriverLocationUpdated = "location.driver.updated"

	// Ride lifecycle notifications routed to connected users
	SubjectRideCancelled = "ride.cancelled"
	SubjectRideCompleted = "ride.completed"
	SubjectWalletUpdate  = "wallet.update"

	// Chat, format: ride.chat.{ride_id}
	SubjectRideChat = "ride.chat.%s"
)
