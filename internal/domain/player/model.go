package player

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Namespace names a source system that assigns its own player ids.
type Namespace string

const (
	NamespaceRazzball Namespace = "razzball"
	NamespaceFantrax  Namespace = "fantrax"
	NamespaceNFBC     Namespace = "nfbc"
)

// Namespaces lists every namespace in resolution priority order.
var Namespaces = []Namespace{NamespaceFantrax, NamespaceNFBC, NamespaceRazzball}

// ExternalIDs holds the per-source ids known for a player. A nil slot means
// the player has not been seen with an id from that source yet.
type ExternalIDs struct {
	RazzballID *int64
	FantraxID  *string
	NFBCID     *int64
}

// Value returns the canonical string form of the id stored for ns.
func (e ExternalIDs) Value(ns Namespace) (string, bool) {
	switch ns {
	case NamespaceFantrax:
		if e.FantraxID != nil {
			return *e.FantraxID, true
		}
	case NamespaceNFBC:
		if e.NFBCID != nil {
			return strconv.FormatInt(*e.NFBCID, 10), true
		}
	case NamespaceRazzball:
		if e.RazzballID != nil {
			return strconv.FormatInt(*e.RazzballID, 10), true
		}
	}
	return "", false
}

// Set stores value in the ns slot. Numeric namespaces reject values that
// are not base-10 integers.
func (e *ExternalIDs) Set(ns Namespace, value string) error {
	switch ns {
	case NamespaceFantrax:
		v := value
		e.FantraxID = &v
	case NamespaceNFBC, NamespaceRazzball:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%s id %q is not an integer", ns, value)
		}
		if ns == NamespaceNFBC {
			e.NFBCID = &n
		} else {
			e.RazzballID = &n
		}
	default:
		return fmt.Errorf("unknown id namespace: %s", ns)
	}
	return nil
}

// Player is the canonical identity every roster row resolves to.
type Player struct {
	ID          string
	ExternalIDs ExternalIDs
	Name        string
	MLBTeam     *string
	Position    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if p.ExternalIDs.FantraxID != nil && strings.TrimSpace(*p.ExternalIDs.FantraxID) == "" {
		return fmt.Errorf("fantrax id must not be blank")
	}
	return nil
}

func (p Player) Team() string {
	if p.MLBTeam == nil {
		return ""
	}
	return *p.MLBTeam
}

func (p Player) PositionText() string {
	if p.Position == nil {
		return ""
	}
	return *p.Position
}

// Filter narrows a candidate pool. Nil fields do not filter.
type Filter struct {
	Team     *string
	Position *string
}

func (f Filter) IsEmpty() bool {
	return f.Team == nil && f.Position == nil
}

// Matches applies team equality and case-insensitive position containment.
func (f Filter) Matches(p Player) bool {
	if f.Team != nil && (p.MLBTeam == nil || *p.MLBTeam != *f.Team) {
		return false
	}
	if f.Position != nil {
		if p.Position == nil {
			return false
		}
		if !strings.Contains(strings.ToLower(*p.Position), strings.ToLower(*f.Position)) {
			return false
		}
	}
	return true
}
