// Package monitor mirrors live show state to MQTT.
//
// The mesh carries all control traffic; the monitor is a one-way
// window for dashboards. On each tick the server hands it the current
// snapshot, the node status table and the pointer position, and it
// publishes each as retained JSON so a subscriber joining mid-show
// sees the full picture immediately.
//
// Publishing never affects cueing. A broker outage is logged and the
// show carries on.
package monitor
