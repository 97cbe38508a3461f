// Package process supervises the alfred mesh daemon as a child process.
//
// Most installs run alfred under the init system and the server only
// talks to its socket. On dedicated show controllers the server can own
// the daemon instead: the supervisor starts it, captures its output
// into the structured log, and restarts it with a fixed delay when it
// dies. Shutdown signals the daemon's process group with SIGTERM and
// escalates to SIGKILL after a grace period.
package process
