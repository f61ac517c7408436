/*-------------------------------------------------------------------------
 *
 * pgEdge PostGIS Schema Manager
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package database

import (
	"log"
	"os"
	"strings"
	"time"
)

// LogLevel represents the logging verbosity level for database operations
type LogLevel int

const (
	// LogLevelNone disables all database logging
	LogLevelNone LogLevel = iota
	// LogLevelInfo logs basic information (connections, queries, errors)
	LogLevelInfo
	// LogLevelDebug logs detailed information (catalog snapshots, dialect probes)
	LogLevelDebug
	// LogLevelTrace logs very detailed information (full queries, generated SQL)
	LogLevelTrace
)

// Logger handles structured logging for database operations
type Logger struct {
	level  LogLevel
	logger *log.Logger
}

var globalLogger *Logger

func init() {
	// Initialize logger with level from environment variable
	// Default is LogLevelNone (no logging) when unset or set to "none"
	levelStr := strings.ToLower(strings.TrimSpace(os.Getenv("PGEDGE_SCHEMA_LOG_LEVEL")))

	var level LogLevel
	switch levelStr {
	case "info":
		level = LogLevelInfo
	case "debug":
		level = LogLevelDebug
	case "trace":
		level = LogLevelTrace
	default:
		level = LogLevelNone
	}

	globalLogger = &Logger{
		level:  level,
		logger: log.New(os.Stderr, "[DATABASE] ", log.LstdFlags),
	}
}

// SetLogLevel sets the global database log level
func SetLogLevel(level LogLevel) {
	globalLogger.level = level
}

// SetLogLevelFromString sets the global log level from a configuration
// value; unknown or empty values leave the current level untouched
func SetLogLevelFromString(s string) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		SetLogLevel(LogLevelNone)
	case "info":
		SetLogLevel(LogLevelInfo)
	case "debug":
		SetLogLevel(LogLevelDebug)
	case "trace":
		SetLogLevel(LogLevelTrace)
	}
}

// GetLogLevel returns the current log level
func GetLogLevel() LogLevel {
	return globalLogger.level
}

// Info logs an informational message (connections, basic queries, errors)
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level >= LogLevelInfo {
		l.logger.Printf("[INFO] "+format, args...)
	}
}

// Debug logs a debug message (catalog snapshots, dialect probes)
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level >= LogLevelDebug {
		l.logger.Printf("[DEBUG] "+format, args...)
	}
}

// Trace logs a trace message (full queries, generated SQL)
func (l *Logger) Trace(format string, args ...interface{}) {
	if l.level >= LogLevelTrace {
		l.logger.Printf("[TRACE] "+format, args...)
	}
}

// LogConnection logs a database connection attempt
func LogConnection(connStr string, duration time.Duration, err error) {
	sanitized := sanitizeConnStr(connStr)
	if err != nil {
		globalLogger.Info("Connection failed: connection=%s, duration=%s, error=%v",
			sanitized, duration, err)
	} else {
		globalLogger.Info("Connection succeeded: connection=%s, duration=%s",
			sanitized, duration)
	}
}

// LogDialectProbe logs the result of the PostGIS dialect probe
func LogDialectProbe(dialect string, duration time.Duration, err error) {
	if err != nil {
		globalLogger.Info("Dialect probe failed: duration=%s, error=%v", duration, err)
	} else {
		globalLogger.Info("Dialect resolved: dialect=%s, duration=%s", dialect, duration)
	}
}

// LogCatalogSnapshot logs a spatial catalog snapshot for one table
func LogCatalogSnapshot(table string, geometryCols, geographyCols, spatialIndexes int, duration time.Duration) {
	globalLogger.Debug("Catalog snapshot: table=%s, geometry_columns=%d, geography_columns=%d, spatial_indexes=%d, duration=%s",
		table, geometryCols, geographyCols, spatialIndexes, duration)
}

// LogGeneratedSQL logs SQL produced for one schema event
func LogGeneratedSQL(event string, statements []string) {
	globalLogger.Debug("Generated SQL: event=%s, statement_count=%d", event, len(statements))
	for _, stmt := range statements {
		globalLogger.Trace("Generated SQL: %s", strings.TrimSpace(stmt))
	}
}

// sanitizeConnStr removes password from connection string for logging
func sanitizeConnStr(connStr string) string {
	schemeIdx := strings.Index(connStr, "://")
	if schemeIdx == -1 {
		return connStr
	}

	scheme := connStr[:schemeIdx+3]
	rest := connStr[schemeIdx+3:]

	// Find the LAST @ before any / or ? to handle passwords containing @
	hostSepIdx := -1
	for i := len(rest) - 1; i >= 0; i-- {
		if rest[i] == '@' {
			slashIdx := strings.Index(rest[i:], "/")
			questionIdx := strings.Index(rest[i:], "?")
			if (slashIdx == -1 || slashIdx > 0) && (questionIdx == -1 || questionIdx > 0) {
				hostSepIdx = i
				break
			}
		}
	}

	if hostSepIdx == -1 {
		return connStr
	}

	credentials := rest[:hostSepIdx]
	hostAndRest := rest[hostSepIdx+1:]

	colonIdx := strings.Index(credentials, ":")
	if colonIdx == -1 {
		return connStr
	}

	user := credentials[:colonIdx]
	return scheme + user + ":***@" + hostAndRest
}
