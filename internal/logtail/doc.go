// Package logtail reads the tail of the njtstatus log file.
//
// # Overview
//
// The UI cannot print to the terminal, so everything the client logs goes
// to a file (see package logging). Pressing "l" in the UI opens an overlay
// with the most recent lines of that file, read with Read.
//
// # Reading Log Files
//
// Read scans the file once and keeps at most 2×maxLines lines in memory,
// compacting as it goes, so large files do not need to fit in memory. Lines
// come back oldest first. A missing log file yields no lines and no error,
// because a fresh install has not written one yet.
//
// # Levels
//
// Level pulls the level=... field out of a slog text line so the overlay
// can color warnings and errors.
package logtail
