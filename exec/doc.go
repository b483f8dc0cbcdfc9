// Package exec runs a command line as a child process connected to this
// process through anonymous pipes, optionally feeding it input and capturing
// its standard output and standard error in memory.
//
// # Basic Usage
//
//	executor := exec.NewExecutor(nil)
//	res, err := executor.Execute(ctx, "echo hello", nil, exec.Capture{Stdout: true})
//	// res.Stdout.String() == "hello\n"
//
// For callers that only care about success, Run mirrors a boolean API:
//
//	ok, out, _ := exec.Run("uname -s", nil, true, false)
//
// # Pipes and descriptors
//
// Only the pipes for requested streams are created. The end kept by this
// process is close-on-exec from the moment it exists, so no other child can
// inherit it. The child's ends are bound to descriptors 0, 1 and 2 of the
// new process; streams that were not requested are bound to the null device.
// Right after launch the parent closes its copies of the child's ends; the
// child then holds the only write end of each output pipe, and a read
// reaches end-of-stream once the child (and anything it passed the
// descriptors to) exits.
//
// # Concurrency
//
// Execute blocks its caller, but inside it input is written and both output
// streams are drained by separate goroutines. A child that fills one output
// pipe while the parent is reading the other cannot deadlock, and input of
// any size can be supplied.
//
// # Exit status
//
// By default the child is detached once its output is drained and its exit
// status is not reported. Set Options.Wait to wait for it and receive the
// exit code in Result.
//
// # Command lines
//
// Command lines are expanded (${NAME}, $NAME and %NAME%), bounded to
// MaxCommandLine bytes and split into arguments with shell quoting rules.
// No shell is involved.
//
// # Presets
//
// A Registry maps names to Presets (a command line plus its input and
// capture settings) so that configured commands can be run by name.
package exec
