/*
Package operation applies a replacement config to a directory tree.

	+-------------+
	|   Config    |
	| (rules+globs)|
	+------+------+
	       |
	+------+------+
	|   Select    |
	| (doublestar)|
	+------+------+
	       |
	+------+------+      +-------------+
	|   Runner    +----->+   Status    |
	|  (errgroup) |      | (atomic I/O)|
	+-------------+      +-------------+

🎯 Purpose:
- Selects files under the config root by include and exclude globs
- Picks the rules whose file filter matches each file
- Runs the simultaneous replacer once per file
- Writes changed files atomically, or only reports them in dry-run mode

🔄 Flow:
1. Plan: walk the root and list the files to visit
2. Process each file concurrently, bounded by the config's concurrency
3. Track every outcome in a status.Manager
4. Return a Result with per-file info and a Summary

⚡ Notes:
- Binary files (a NUL byte near the start) are skipped
- VCS metadata and the config file itself are never rewritten
- The first failing file cancels files that have not started yet

🔍 Example:

	cfg, err := config.Load(ctx, ".subst.yaml")
	op, err := operation.New(operation.Options{Config: cfg, DryRun: true})
	res, err := op.Apply(ctx)
	fmt.Println(res.Summary.Modified, "files would change")
*/
package operation
