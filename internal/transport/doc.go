// Package transport moves domain values over the mesh broadcast daemon.
//
// It pairs the wire codec with the daemon's publish/fetch primitives and
// fixes the channel ids the cueing protocol uses. The mesh is a lossy
// broadcast medium: sends are fire and forget, and receive failures are
// indistinguishable from "nothing published yet", so the transport absorbs
// daemon errors and reports them only through its logger. Each scheduled
// task naturally retries on its next interval.
package transport
