package constants

import "time"

// Redis key formats
const (
	KeyDriverLocation    = "driver:location:%s"    // Format: driver:location:{driver_id}
	KeyPassengerLocation = "passenger:location:%s" // Format: passenger:location:{passenger_id}
	KeyDriverGeo         = "driver:geo"            // GEO set of all driver locations
	KeyPassengerGeo      = "passenger:geo"         // GEO set of all passenger locations
)

// Redis hash fields
const (
	FieldLatitude  = "lat"
	FieldLongitude = "lng"
	FieldTimestamp = "ts"
	FieldCell      = "cell"
)

// DriverLocationTTL bounds how long a silent driver's last position is kept
const DriverLocationTTL = 24 * time.Hour

// FanoutCellPrecision is the geohash precision of the passenger cells used
// for driver fan-out (about 4.9km x 4.9km)
const FanoutCellPrecision = 5
