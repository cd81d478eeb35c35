package cache

import "time"

// Keys for catalog reference data
const (
	KeyBrands   = "carmart:catalog:brands"
	KeyCarTypes = "carmart:catalog:car_types"
)

// ReferenceTTL is how long reference lists stay cached. Writes invalidate
// explicitly, the TTL bounds drift from out-of-band edits.
const ReferenceTTL = 10 * time.Minute
