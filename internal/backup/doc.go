// Package backup snapshots IDE config files before mcpm rewrites them.
//
// Each backup is a directory holding copies of the files plus a manifest
// with their SHA256 hashes and modes:
//
//	<DataHome>/mcpm/backups/
//	└── {ide}/
//	    └── {id}/
//	        ├── manifest.json
//	        └── {copied files...}
//
// Backups are taken once per IDE per command through a [Session], pruned
// to the retention count after each new backup, and restored with
// [Manager.Restore], which refuses files whose hash no longer matches
// ([ErrBackupCorrupted]).
package backup
