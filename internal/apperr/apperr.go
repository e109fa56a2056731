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

// Package apperr classifies the fatal error kinds the analyzer can return,
// so the command layer can report a stable message and exit non-zero
// without string-matching error text.
package apperr

import "fmt"

// Kind is one of the fatal error categories. ParseWarning and
// ResolveWarning are not represented here: they are non-fatal and only
// ever logged.
type Kind string

const (
	KindConfig          Kind = "ConfigError"
	KindWorkspace       Kind = "WorkspaceError"
	KindIO              Kind = "IoError"
	KindMissingAnalysis Kind = "MissingAnalysis"
)

// Error wraps a fatal condition with its kind, for classification by
// callers that need to choose an exit code or a report format.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err if it (or something it wraps) is an
// *Error, and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind, true
	}
	return "", false
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func Config(format string, args ...any) error {
	return &Error{Kind: KindConfig, Msg: fmt.Sprintf(format, args...)}
}

func ConfigWrap(err error, format string, args ...any) error {
	return &Error{Kind: KindConfig, Msg: fmt.Sprintf(format, args...), Err: err}
}

func Workspace(format string, args ...any) error {
	return &Error{Kind: KindWorkspace, Msg: fmt.Sprintf(format, args...)}
}

func WorkspaceWrap(err error, format string, args ...any) error {
	return &Error{Kind: KindWorkspace, Msg: fmt.Sprintf(format, args...), Err: err}
}

func IO(format string, args ...any) error {
	return &Error{Kind: KindIO, Msg: fmt.Sprintf(format, args...)}
}

func IOWrap(err error, format string, args ...any) error {
	return &Error{Kind: KindIO, Msg: fmt.Sprintf(format, args...), Err: err}
}

func MissingAnalysis(format string, args ...any) error {
	return &Error{Kind: KindMissingAnalysis, Msg: fmt.Sprintf(format, args...)}
}

func MissingAnalysisWrap(err error, format string, args ...any) error {
	return &Error{Kind: KindMissingAnalysis, Msg: fmt.Sprintf(format, args...), Err: err}
}
