// Package mqtt provides MQTT client connectivity for the cue server's
// optional state mirror.
//
// This package manages:
//   - Connection to an MQTT broker with auto-reconnect
//   - Retained state publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The mesh carries all control traffic; MQTT is strictly a read-only
// mirror. The server publishes the current cue group, the aggregated
// node status table and the pointer position as retained JSON so
// dashboards and front-of-house tooling can watch the show without
// touching the mesh.
//
//	Cue Server → MQTT Broker → Dashboards
//
// # Security Considerations
//
//   - TLS is recommended for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.StateCurrent()
//	client.PublishRetained(topic, payload)
package mqtt
