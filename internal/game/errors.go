package game

import "errors"

// Error taxonomy for intent handling. All of these are reported to the
// requesting connection only and never crash the process.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrInvalidZone     = errors.New("invalid zone")

	// ErrCardNotFound is benign: the client most likely acted on stale
	// state. Handlers re-broadcast the authoritative snapshot so the
	// client resynchronizes.
	ErrCardNotFound = errors.New("card not found")

	ErrDeckEmpty             = errors.New("deck is empty")
	ErrNoCommanderDesignated = errors.New("no commander designated")
	ErrNameTaken             = errors.New("player name already taken")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrNotDoubleFaced        = errors.New("card has no second face")
	ErrUnsupportedZones      = errors.New("unsupported zone combination")
)
