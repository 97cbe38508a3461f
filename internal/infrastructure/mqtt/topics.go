package mqtt

import "fmt"

// Topic prefixes for the cue server's published state.
//
// All topics sit under the flat scheme: cuemesh/{category}/{subject}
const (
	// TopicPrefixState is the base for mirrored show state.
	TopicPrefixState = "cuemesh/state"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "cuemesh/system"
)

// Topics provides builders for cue server MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	topics.StateCurrent() // "cuemesh/state/current"
type Topics struct{}

// StateCurrent returns the topic carrying the currently active cue group.
//
// Example: cuemesh/state/current
func (Topics) StateCurrent() string {
	return fmt.Sprintf("%s/current", TopicPrefixState)
}

// StateNodes returns the topic carrying the aggregated node status table.
//
// Example: cuemesh/state/nodes
func (Topics) StateNodes() string {
	return fmt.Sprintf("%s/nodes", TopicPrefixState)
}

// StatePointer returns the topic carrying the cue pointer position.
//
// Example: cuemesh/state/pointer
func (Topics) StatePointer() string {
	return fmt.Sprintf("%s/pointer", TopicPrefixState)
}

// SystemStatus returns the system status topic used for online/offline
// announcements and the LWT.
//
// Example: cuemesh/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
