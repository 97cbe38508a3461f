// Package console is the operator command surface.
//
// It reads slash commands line by line and maps each to a controller
// call:
//
//	/goto cue <n>        warp to cue group n
//	/save <name>         export the loaded show to the shows folder
//	/open saved <name>   import a show from the shows folder
//	/open example <name> import a show from the examples folder
//	/list                list the saved shows
//	/reset               restore the built-in template show
//	/quit                close the console
//
// Invalid input produces a message on the output writer, never a
// crash. EOF on the input (or /quit) ends Run with ErrClosed, which
// the orchestrator treats as a clean shutdown request rather than a
// fault.
package console
