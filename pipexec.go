// Package pipexec runs commands over anonymous pipes and captures their
// output. The library lives in the exec package; this package only carries
// the release version.
package pipexec

// Version is the pipexec release version.
const Version = "0.3.0"
