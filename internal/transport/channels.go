package transport

// Channel is a mesh daemon channel id. The daemon reserves ids below 64
// for its own use; the cueing protocol claims five above that.
type Channel int

// The five logical channels of the cueing protocol.
const (
	// ChannelHeartbeat carries the server's clock so nodes can tell the
	// server is up to date.
	ChannelHeartbeat Channel = 65

	// ChannelAttributes carries the node attributes table.
	ChannelAttributes Channel = 68

	// ChannelCueToNode carries the cue state vocabulary (cue state to
	// node state transitions).
	ChannelCueToNode Channel = 69

	// ChannelCurrentCues carries the current cue group snapshot.
	ChannelCurrentCues Channel = 70

	// ChannelNodeReport carries per-node status reports back to the
	// server.
	ChannelNodeReport Channel = 71
)

// String names the channel for logs.
func (c Channel) String() string {
	switch c {
	case ChannelHeartbeat:
		return "heartbeat"
	case ChannelAttributes:
		return "attributes"
	case ChannelCueToNode:
		return "cue-to-node"
	case ChannelCurrentCues:
		return "current-cues"
	case ChannelNodeReport:
		return "node-report"
	default:
		return "unknown"
	}
}
