// Package alfred invokes the alfred mesh broadcast daemon.
//
// alfred floods small data blobs across a wireless mesh, addressed by
// integer channel ids, with no delivery guarantees. This client shells out
// to the alfred binary the same way the daemon's own tooling does:
//
//	alfred -s <channel>   publish stdin under a channel id
//	alfred -r <channel>   print every record currently held for a channel
//
// Every invocation is bounded by a timeout so a wedged daemon cannot stall
// the caller's schedule.
package alfred
