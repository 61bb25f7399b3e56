// Package logtail reads the tail of the client log file for the activity
// view.
//
// Read keeps a ring buffer of the last N lines, so memory stays bounded by N
// no matter how large the file has grown. Activity renders the JSON entries
// written by package logging into single display lines and can filter them.
//
// A missing log file is not an error; the view is simply empty until the
// first entry is written.
package logtail
