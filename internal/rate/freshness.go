package rate

import (
	"fmt"
	"time"
	_ "time/tzdata" // publication zone must resolve on hosts without zoneinfo
)

// PublicationHour is the local hour from which the daily reference rates are
// considered published.
const PublicationHour = 17

var publicationZone = mustLoadLocation("Europe/Paris")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load location %s: %v", name, err))
	}
	return loc
}

// Decision is the outcome of the freshness policy.
type Decision int

const (
	Miss Decision = iota
	Hit
)

func (d Decision) String() string {
	if d == Hit {
		return "hit"
	}
	return "miss"
}

// Decide reports whether record, stored under today's cache key, may be served
// at now. Before publication any same-day record is authoritative; after it,
// only a record captured after publication on the same local day is.
func Decide(now time.Time, record *CachedRecord) Decision {
	if record == nil {
		return Miss
	}

	local := now.In(publicationZone)
	if local.Hour() < PublicationHour {
		return Hit
	}

	fetched := record.FetchTimestamp.In(publicationZone)
	if sameDay(fetched, local) && fetched.Hour() >= PublicationHour {
		return Hit
	}
	return Miss
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
