package model

// Status is the classification of a probe.
type Status string

// Status constants. The string values match the labels shown in reports.
const (
	// StatusFound means the response status matched the target's exists status.
	StatusFound Status = "FOUND"
	// StatusNotFound means the platform answered with any other status.
	StatusNotFound Status = "NOT FOUND"
	// StatusError means the probe failed at the transport level.
	StatusError Status = "ERROR"
)

// String returns the string representation of the Status.
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if s is one of the defined statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusFound, StatusNotFound, StatusError:
		return true
	default:
		return false
	}
}

// ParseStatus converts a string to Status.
// It accepts the report labels and a few lower-case spellings.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "FOUND", "found":
		return StatusFound, true
	case "NOT FOUND", "not found", "not_found", "notfound":
		return StatusNotFound, true
	case "ERROR", "error":
		return StatusError, true
	default:
		return "", false
	}
}
