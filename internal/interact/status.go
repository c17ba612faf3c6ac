package interact

import "fmt"

// State channel values.
const (
	StateInactive = "Inactive"
	StateTwoHands = "Active (Two Hands)"
	StateRotation = "Active (Rotation)"
)

// StateActive returns the one-hand state label for a handedness.
func StateActive(handedness string) string {
	return fmt.Sprintf("Active (%s)", handedness)
}

// Status is the text shown to the user, replaced every tick.
type Status struct {
	State      string `json:"state"`
	Action     string `json:"action"`
	Confidence string `json:"confidence"`
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}
