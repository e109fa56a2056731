/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package logging centralizes diagnostics. Every diagnostic goes to
// standard error; the two canonical documents (analysis, impact-set) are
// the only things the tool ever writes to standard out.
package logging

import (
	"os"
	"sync"

	"github.com/pterm/pterm"
)

func init() {
	pterm.Info = *pterm.Info.WithPrefix(pterm.Prefix{
		Text:  "INFO",
		Style: pterm.NewStyle(pterm.FgBlue),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText).WithWriter(os.Stderr)

	pterm.Success = *pterm.Success.WithPrefix(pterm.Prefix{
		Text:  "SUCCESS",
		Style: pterm.NewStyle(pterm.FgGreen),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText).WithWriter(os.Stderr)

	pterm.Warning = *pterm.Warning.WithPrefix(pterm.Prefix{
		Text:  "WARNING",
		Style: pterm.NewStyle(pterm.FgYellow),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText).WithWriter(os.Stderr)

	pterm.Error = *pterm.Error.WithPrefix(pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.FgRed),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText).WithWriter(os.Stderr)

	pterm.Debug = *pterm.Debug.WithPrefix(pterm.Prefix{
		Text:  "DEBUG",
		Style: pterm.NewStyle(pterm.FgCyan),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText).WithWriter(os.Stderr)
}

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

// Logger writes diagnostics to stderr via pterm, gated by debug/quiet flags.
type Logger struct {
	mu           sync.RWMutex
	debugEnabled bool
	quietEnabled bool
}

var globalLogger = &Logger{}

// GetLogger returns the global logger instance.
func GetLogger() *Logger { return globalLogger }

// SetDebugEnabled controls whether debug messages are shown.
func (l *Logger) SetDebugEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugEnabled = enabled
}

// IsDebugEnabled returns whether debug logging is enabled.
func (l *Logger) IsDebugEnabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.debugEnabled
}

// SetQuietEnabled suppresses Info and Debug messages. Warnings and errors
// still print, including the resolve and parse warnings; those are not
// filtered by quiet mode.
func (l *Logger) SetQuietEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quietEnabled = enabled
}

// IsQuietEnabled returns whether quiet mode is active.
func (l *Logger) IsQuietEnabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.quietEnabled
}

func (l *Logger) Debug(format string, args ...any)   { l.log(LogLevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)    { l.log(LogLevelInfo, format, args...) }
func (l *Logger) Warning(format string, args ...any) { l.log(LogLevelWarning, format, args...) }
func (l *Logger) Error(format string, args ...any)   { l.log(LogLevelError, format, args...) }

func (l *Logger) log(level LogLevel, format string, args ...any) {
	l.mu.RLock()
	debugEnabled := l.debugEnabled
	quietEnabled := l.quietEnabled
	l.mu.RUnlock()

	if level == LogLevelDebug && !debugEnabled {
		return
	}
	if quietEnabled && (level == LogLevelInfo || level == LogLevelDebug) {
		return
	}

	switch level {
	case LogLevelDebug:
		pterm.Debug.Printf(format+"\n", args...)
	case LogLevelInfo:
		pterm.Info.Printf(format+"\n", args...)
	case LogLevelWarning:
		pterm.Warning.Printf(format+"\n", args...)
	case LogLevelError:
		pterm.Error.Printf(format+"\n", args...)
	}
}

// Convenience wrappers around the global logger.
func Debug(format string, args ...any)   { globalLogger.Debug(format, args...) }
func Info(format string, args ...any)    { globalLogger.Info(format, args...) }
func Warning(format string, args ...any) { globalLogger.Warning(format, args...) }
func Error(format string, args ...any)   { globalLogger.Error(format, args...) }

func SetDebugEnabled(enabled bool) { globalLogger.SetDebugEnabled(enabled) }
func IsDebugEnabled() bool         { return globalLogger.IsDebugEnabled() }
func SetQuietEnabled(enabled bool) { globalLogger.SetQuietEnabled(enabled) }
func IsQuietEnabled() bool         { return globalLogger.IsQuietEnabled() }
