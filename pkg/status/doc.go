/*
Package status writes replaced files and tracks what happened to each one.

	            +-------------+
	            |   Manager   |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|   Files   |           | Summary |
	| (atomic)  |           |  (logs) |
	+-----------+           +---------+

🎯 Purpose:
- Reads and atomically rewrites files under a base directory
- Keeps optional .bak copies of originals
- Records a FileInfo (status, replacement count, sizes) per file
- Reports progress and a final Summary

📊 File states:
- unchanged: no rule matched, or the output equals the input
- modified: the file content changed
- skipped: no rule applies to the file
- failed: reading, scanning or writing failed

🔍 Example:

	mgr := status.New(root, zerolog.Ctx(ctx))
	mgr.StartOperation(ctx, len(paths))

	content, err := mgr.ReadFile(ctx, path)
	// ... replace ...
	err = mgr.WriteFileAtomic(ctx, path, out)
	mgr.TrackFile(ctx, status.FileInfo{Path: path, Status: status.StatusModified})
	mgr.Advance(ctx)

	mgr.FinishOperation(ctx)
	sum := mgr.Summary()
*/
package status
