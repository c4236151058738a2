// Package messages holds the tagged message structs exchanged with the
// external robot. Every field is in the external (Z-up) frame.
package messages

import "github.com/SofaDefrost/prefab.MobileTrunk/pkg/frames"

// ROS message type names used in topic mappings.
const (
	TypeTwist    = "geometry_msgs/msg/Twist"
	TypeOdometry = "nav_msgs/msg/Odometry"
	TypeImu      = "sensor_msgs/msg/Imu"
)

// Twist mirrors geometry_msgs/Twist.
type Twist struct {
	Linear  frames.Vector3 `json:"linear"`
	Angular frames.Vector3 `json:"angular"`
}

// IsFinite reports whether every component is a real number.
func (t Twist) IsFinite() bool {
	return t.Linear.IsFinite() && t.Angular.IsFinite()
}

// Odometry mirrors the fields of nav_msgs/Odometry the bridge uses.
type Odometry struct {
	Stamp   frames.Timestamp `json:"stamp"`
	Pose    frames.Pose      `json:"pose"`
	Linear  frames.Vector3   `json:"linear"`
	Angular frames.Vector3   `json:"angular"`
}

// Imu mirrors sensor_msgs/Imu without covariances.
type Imu struct {
	Stamp              frames.Timestamp  `json:"stamp"`
	Orientation        frames.Quaternion `json:"orientation"`
	AngularVelocity    frames.Vector3    `json:"angular_velocity"`
	LinearAcceleration frames.Vector3    `json:"linear_acceleration"`
}
