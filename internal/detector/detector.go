package detector

import "errors"

// ErrMalformedHand is returned when tracker output cannot form a full hand.
var ErrMalformedHand = errors.New("malformed hand landmarks")

// RawPoint is a landmark as delivered over the wire. Pointer fields let
// missing coordinates be told apart from zero.
type RawPoint struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

// RawHand is a hand as delivered by an external tracker (MediaPipe service or
// a browser client).
type RawHand struct {
	Points     []RawPoint `json:"points"`
	Handedness string     `json:"handedness"`
	Score      float64    `json:"score"`
}

// ToHandLandmarks converts raw tracker output into HandLandmarks. Hands with
// fewer than NumLandmarks points, missing fields or non-finite values are
// rejected with ErrMalformedHand.
func (h RawHand) ToHandLandmarks() (HandLandmarks, error) {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	if len(h.Points) < NumLandmarks {
		return lm, ErrMalformedHand
	}

	for i := 0; i < NumLandmarks; i++ {
		p := h.Points[i]
		if p.X == nil || p.Y == nil {
			return lm, ErrMalformedHand
		}
		lm.Points[i] = Point3D{X: *p.X, Y: *p.Y}
		if p.Z != nil {
			lm.Points[i].Z = *p.Z
		}
	}

	if !lm.Valid() {
		return lm, ErrMalformedHand
	}
	return lm, nil
}

// ConvertHands converts a batch of raw hands, dropping malformed ones.
// The second return value counts the dropped hands.
func ConvertHands(raw []RawHand) ([]HandLandmarks, int) {
	hands := make([]HandLandmarks, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		lm, err := r.ToHandLandmarks()
		if err != nil {
			dropped++
			continue
		}
		hands = append(hands, lm)
	}
	return hands, dropped
}
