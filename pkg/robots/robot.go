package robots

import (
	"fmt"
	"strconv"
	"strings"
)

// Reputation describes how trustworthy a cataloged robot is.
type Reputation string

const (
	ReputationNice       Reputation = "nice"
	ReputationOK         Reputation = "ok"
	ReputationSuspicious Reputation = "suspicious"
	ReputationBad        Reputation = "bad"
)

// ParseReputation validates a reputation string. Matching is case-insensitive.
func ParseReputation(s string) (Reputation, error) {
	r := Reputation(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown reputation %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the four known tiers.
func (r Reputation) Valid() bool {
	switch r {
	case ReputationNice, ReputationOK, ReputationSuspicious, ReputationBad:
		return true
	}
	return false
}

// Severity orders reputations from most (0) to least trusted (3).
// Unknown values return -1.
func (r Reputation) Severity() int {
	switch r {
	case ReputationNice:
		return 0
	case ReputationOK:
		return 1
	case ReputationSuspicious:
		return 2
	case ReputationBad:
		return 3
	}
	return -1
}

func (r Reputation) String() string { return string(r) }

// Robot is one record of the reference database.
// Records are immutable once the Database is built.
type Robot struct {
	ID         int
	Name       string
	Slug       string
	Reputation Reputation
	IPs        []Address
	Ranges     []Range
	UserAgents []string // lowercase hex MD5 hashes
}

// URL builds the public robot page from base, the reputation and either the
// slug or the numeric id.
func (r *Robot) URL(base string) string {
	ref := r.Slug
	if ref == "" {
		ref = strconv.Itoa(r.ID)
	}
	return strings.TrimRight(base, "/") + "/" + string(r.Reputation) + "/" + ref
}
