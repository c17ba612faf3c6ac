package interact

import "gonum.org/v1/gonum/spatial/r3"

// NodeID is a handle into the scene-owned node table.
type NodeID int

// Node is a manipulable object as seen by the engine.
type Node struct {
	ID       NodeID
	Position r3.Vec
}

// CameraPose is the viewer position and orientation.
// Right and Up are unit basis vectors of the view.
type CameraPose struct {
	Position r3.Vec
	Target   r3.Vec
	Right    r3.Vec
	Up       r3.Vec
}

// Scene is the read side of the scene collaborator. Changes are requested
// through Commands returned by Engine.Process.
type Scene interface {
	// Project maps a world point to screen pixels. ok is false when the
	// point cannot be projected, e.g. behind the camera.
	Project(p r3.Vec) (x, y float64, ok bool)

	// Viewport returns the screen size in pixels.
	Viewport() (width, height float64)

	// Camera returns the current viewer pose.
	Camera() CameraPose

	// Nodes returns every node eligible for interaction.
	Nodes() []Node

	// NodePosition returns the current position of a node.
	NodePosition(id NodeID) (r3.Vec, bool)
}
