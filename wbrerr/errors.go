// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package wbrerr defines the structured error taxonomy every WBR component
// reports through: ConfigError, DataError, ConnectionError, EvaluationError,
// AnnotationWarning, and InternalError.
package wbrerr

import (
	"fmt"
)

// Kind classifies an Error for propagation-policy decisions by callers
// (wbrctl serve maps Kind to an HTTP status; the build CLI logs any error
// and exits with status 1 whatever its Kind).
type Kind string

const (
	ConfigError       Kind = "ConfigError"
	DataError         Kind = "DataError"
	ConnectionError   Kind = "ConnectionError"
	EvaluationError   Kind = "EvaluationError"
	AnnotationWarning Kind = "AnnotationWarning"
	InternalError     Kind = "InternalError"
)

// Fatal reports whether errors of this Kind abort the current build.
// EvaluationError and AnnotationWarning are recovered locally by their
// callers and never reach this function with intent to abort; Fatal exists
// so a caller holding an arbitrary *Error can still make that call.
func (k Kind) Fatal() bool {
	switch k {
	case EvaluationError, AnnotationWarning:
		return false
	default:
		return true
	}
}

// Error is the `{kind, path, detail}` structured error spec.md §7 requires.
// Path identifies where in the config/pipeline the error occurred (a YAML
// key path, a metric name, a block index) and is empty when not applicable.
type Error struct {
	Kind   Kind
	Path   string
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, &wbrerr.Error{Kind: wbrerr.ConfigError}) work by
// comparing Kind when the target is itself a bare *Error carrying only a Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	return true
}

func New(kind Kind, path, detail string) *Error {
	return &Error{Kind: kind, Path: path, Detail: detail}
}

func Wrap(kind Kind, path string, cause error) *Error {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	return &Error{Kind: kind, Path: path, Detail: detail, Cause: cause}
}

// multiError is the subset of *multierror.Error's shape KindOf needs,
// avoided as a direct dependency so wbrerr stays import-light; config.Validate
// and source.Load both return *multierror.Error wrapping *Error values.
type multiError interface {
	WrappedErrors() []error
}

// KindOf extracts the Kind from err if it is a *Error, or the Kind of its
// first wrapped *Error if it's a multierror (spec.md §7's taxonomy is
// meant to classify the whole failure, and a config validation failure's
// every wrapped error shares the same ConfigError kind in practice).
func KindOf(err error) (Kind, bool) {
	if err == nil {
		return "", false
	}
	if asErr, ok := err.(*Error); ok {
		return asErr.Kind, true
	}
	if merr, ok := err.(multiError); ok {
		for _, wrapped := range merr.WrappedErrors() {
			if kind, ok := KindOf(wrapped); ok {
				return kind, true
			}
		}
	}
	return "", false
}
