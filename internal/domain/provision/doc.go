// Package provision contains the core domain types of a bootstrap run.
//
// It defines the artifacts being installed, the tagged Source an artifact is
// installed from, the runtime install state machine's states and the report
// produced by the batch package installer. None of them outlive a run.
package provision
