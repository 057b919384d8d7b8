// Package logging configures structured slog logging for indsearch.
//
// By default logs go to stderr at info level. The --debug flag adds a
// size-rotated JSON log file under ~/.indsearch/logs/ at debug level.
package logging
