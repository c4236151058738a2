package api

import "github.com/SofaDefrost/prefab.MobileTrunk/pkg/messages"

// --- Data Structures for WebSocket Messages ---

// Vector3 defines a standard 3D vector.
type Vector3 struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

// TwistMsg represents a command velocity message, matching geometry_msgs/Twist.
// Missing components read as zero.
type TwistMsg struct {
	Linear  Vector3 `json:"linear"`
	Angular Vector3 `json:"angular"`
}

// ToTwist converts the JSON form into the bridge message.
func (m TwistMsg) ToTwist() messages.Twist {
	var t messages.Twist
	t.Linear.X, t.Linear.Y, t.Linear.Z = val(m.Linear.X), val(m.Linear.Y), val(m.Linear.Z)
	t.Angular.X, t.Angular.Y, t.Angular.Z = val(m.Angular.X), val(m.Angular.Y), val(m.Angular.Z)
	return t
}

func val(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// ControlReply is written back on the control socket for every text frame.
type ControlReply struct {
	Status string `json:"status"`
	Topic  string `json:"topic,omitempty"`
	Error  string `json:"error,omitempty"`
}
