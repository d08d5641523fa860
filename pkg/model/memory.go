package model

import (
	"time"
)

// SpaceMemory is a cached natural-language digest of a space's content,
// regenerated when the space's content fingerprint changes or the entry
// falls out of the freshness window.
type SpaceMemory struct {
	SpaceID       SpaceID
	Summary       string
	SampledTitles []string
	ItemCount     int
	Fingerprint   string
	GeneratedAt   time.Time
}
