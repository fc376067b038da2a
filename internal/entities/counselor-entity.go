package entities

import (
	"time"

	"counsel-dispatch/pkg/types"
)

// Counselor is an on-duty legal counselor in the directory.
//
// ActiveRequests must always equal the number of non-terminal requests and
// appointments assigned to this counselor. The claim and release transactions
// are the only writers of that counter.
type Counselor struct {
	ID                 string
	FullName           string
	Contact            string
	VerificationStatus string
	Online             bool
	Available          bool
	HomeRegion         string
	ServedRegions      []string
	Specializations    []string
	Rating             float64
	RatingCount        int
	ActiveRequests     int
	MaxActiveRequests  int
	TotalCases         int
	CompletedCases     int
	LastSeenAt         *time.Time

	types.BaseEntity
}

// ServesRegion reports whether the counselor covers the given region,
// home region included.
func (c *Counselor) ServesRegion(region string) bool {
	if c.HomeRegion == region {
		return true
	}
	for _, r := range c.ServedRegions {
		if r == region {
			return true
		}
	}
	return false
}

// HasCapacity reports whether the counselor can take one more live claim.
func (c *Counselor) HasCapacity() bool {
	return c.ActiveRequests < c.MaxActiveRequests
}
