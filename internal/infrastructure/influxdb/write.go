package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteNodeReport records a node's acknowledgement of a cue. The point is
// timestamped with the time carried in the report, not the time the server
// polled it, so a show can be replayed cue by cue afterwards. Non-blocking;
// dropped silently when disconnected.
func (c *Client) WriteNodeReport(nodeNumber, cueNumber, nodeState string, reportedAt time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"node_reports",
		map[string]string{
			"node":  nodeNumber,
			"state": nodeState,
		},
		map[string]interface{}{
			"cue_number": cueNumber,
		},
		reportedAt,
	)

	c.writeAPI.WritePoint(point)
}

// WriteNavigation records a cue pointer movement.
func (c *Client) WriteNavigation(group, maxGroup int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"navigation",
		nil,
		map[string]interface{}{
			"group":     group,
			"max_group": maxGroup,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
