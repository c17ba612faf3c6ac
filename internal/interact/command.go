package interact

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Command is a request against the scene. The set of commands is closed.
type Command interface {
	command()
	fmt.Stringer
}

// SetCamera moves the viewer and aims it at Target.
type SetCamera struct {
	Position r3.Vec
	Target   r3.Vec
}

// PinNode fixes a node at Position, overriding physics.
// Grab is set on the tick the node is acquired.
type PinNode struct {
	Node     NodeID
	Position r3.Vec
	Grab     bool
}

// UnpinNode hands a node back to physics.
type UnpinNode struct {
	Node NodeID
}

// SetVelocity imparts a velocity to a node.
type SetVelocity struct {
	Node     NodeID
	Velocity r3.Vec
}

// Reheat asks the layout simulation to resume.
type Reheat struct{}

// Activate is a dwell "click" on a node.
type Activate struct {
	Node NodeID
}

func (SetCamera) command()   {}
func (PinNode) command()     {}
func (UnpinNode) command()   {}
func (SetVelocity) command() {}
func (Reheat) command()      {}
func (Activate) command()    {}

func (c SetCamera) String() string {
	return fmt.Sprintf("set-camera %v -> %v", c.Position, c.Target)
}

func (c PinNode) String() string {
	return fmt.Sprintf("pin %d at %v", c.Node, c.Position)
}

func (c UnpinNode) String() string {
	return fmt.Sprintf("unpin %d", c.Node)
}

func (c SetVelocity) String() string {
	return fmt.Sprintf("velocity %d %v", c.Node, c.Velocity)
}

func (Reheat) String() string {
	return "reheat"
}

func (c Activate) String() string {
	return fmt.Sprintf("activate %d", c.Node)
}

// Result is the output of one engine tick.
type Result struct {
	Commands []Command
	Status   Status
}
