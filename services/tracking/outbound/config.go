package outbound

import (
	"time"

	"github.com/piresc/ukdrive/internal/pkg/models"
	"github.com/piresc/ukdrive/internal/pkg/retry"
)

// PersistPolicy is the durable persistence cadence of one role
type PersistPolicy struct {
	MinDistanceMeters float64
	MinInterval       time.Duration
	// Heartbeat forces a write once this much time passed since the last one
	Heartbeat time.Duration
}

// Config configures a Pipeline
type Config struct {
	Role    models.Role
	ActorID string

	// Samples closer than JitterDistanceMeters and sooner than
	// JitterInterval after the last send are dropped
	JitterDistanceMeters float64
	JitterInterval       time.Duration

	SendRetryDelay     time.Duration
	AcquisitionTimeout time.Duration
	Acquisition        retry.Config
	Persist            PersistPolicy
}

// DriverPersistPolicy returns the driver persistence cadence
func DriverPersistPolicy() PersistPolicy {
	return PersistPolicy{
		MinDistanceMeters: 50,
		MinInterval:       15 * time.Second,
		Heartbeat:         20 * time.Second,
	}
}

// PassengerPersistPolicy returns the passenger persistence cadence
func PassengerPersistPolicy() PersistPolicy {
	return PersistPolicy{
		MinDistanceMeters: 100,
		MinInterval:       20 * time.Second,
		Heartbeat:         20 * time.Second,
	}
}

// DefaultConfig returns the standard configuration for role
func DefaultConfig(role models.Role, actorID string) Config {
	persist := DriverPersistPolicy()
	if role == models.RolePassenger {
		persist = PassengerPersistPolicy()
	}
	return Config{
		Role:                 role,
		ActorID:              actorID,
		JitterDistanceMeters: 2,
		JitterInterval:       2 * time.Second,
		SendRetryDelay:       2 * time.Second,
		AcquisitionTimeout:   15 * time.Second,
		Acquisition:          retry.AcquisitionConfig(),
		Persist:              persist,
	}
}
