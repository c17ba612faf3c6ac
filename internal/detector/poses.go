package detector

// Shift returns a copy of h with every landmark moved by (dx, dy) in image space.
func Shift(h HandLandmarks, dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}

// WithHandedness returns a copy of h carrying the given handedness label.
func WithHandedness(h HandLandmarks, label string) HandLandmarks {
	h.Handedness = label
	return h
}

// FistLandmarks returns a preset closed hand: all fingers curled, thumb tucked upward.
func FistLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.0}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.65, Z: 0.0}
	landmarks.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.50, Z: 0.0}
	landmarks.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	// Index finger curled (knuckles close together, tip near palm)
	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	landmarks.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	landmarks.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	landmarks.Points[IndexTip] = Point3D{X: 0.50, Y: 0.72, Z: -0.02}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	landmarks.Points[MiddleTip] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	landmarks.Points[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	landmarks.Points[RingTip] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	landmarks.Points[PinkyTip] = Point3D{X: 0.35, Y: 0.74, Z: -0.02}

	return landmarks
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}

// PointingLandmarks returns a preset hand with the index finger raised and
// the other fingers curled. The index tip sits at (0.58, 0.40).
func PointingLandmarks() HandLandmarks {
	landmarks := FistLandmarks()

	// Thumb tucked across the palm
	landmarks.Points[ThumbIP] = Point3D{X: 0.56, Y: 0.64, Z: -0.01}
	landmarks.Points[ThumbTip] = Point3D{X: 0.52, Y: 0.66, Z: -0.02}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.58, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.57, Y: 0.48, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.40, Z: 0.0}

	return landmarks
}

// PinchLandmarks returns a preset open hand whose thumb and index tips touch
// around (0.61, 0.505).
func PinchLandmarks() HandLandmarks {
	landmarks := OpenPalmLandmarks()

	landmarks.Points[ThumbIP] = Point3D{X: 0.66, Y: 0.58, Z: 0.02}
	landmarks.Points[ThumbTip] = Point3D{X: 0.62, Y: 0.51, Z: 0.01}

	landmarks.Points[IndexPIP] = Point3D{X: 0.58, Y: 0.56, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.60, Y: 0.52, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.60, Y: 0.50, Z: 0.0}

	return landmarks
}
