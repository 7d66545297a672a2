/*
 * Copyright 2026 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package hpacucli

import (
	"errors"
	"regexp"
)

var (
	// ErrNotReady is returned when a command is sent to a session that was
	// never launched or was already closed.
	ErrNotReady = errors.New("hpacucli session is not ready")

	// ErrProcessExited is returned when the utility exits while a command is
	// waiting for the prompt.
	ErrProcessExited = errors.New("hpacucli process exited")

	// ErrNoLogicalDrive is returned by CreateLogicalDrive when the listing
	// taken after the create command holds no logical drive.
	ErrNoLogicalDrive = errors.New("no logical drive listed after create")

	// ErrNoDiskName is returned by CreateLogicalDrive when the detail report
	// of the new logical drive has no "Disk Name" field.
	ErrNoDiskName = errors.New("logical drive detail has no disk name")

	errorRegexp = regexp.MustCompile(`(?m)Error: (.*)`)
)

// TimeoutMessage is the message of the SessionError raised when the prompt did
// not come back in time.
const TimeoutMessage = "timeout"

// SessionError is an error reported by the utility itself in its output, or a
// command timeout.
type SessionError struct {
	Message string
}

func (e *SessionError) Error() string {
	return "hpacucli: " + e.Message
}

// IsTimeout reports whether err is a SessionError raised by a command timeout.
func IsTimeout(err error) bool {
	var se *SessionError
	return errors.As(err, &se) && se.Message == TimeoutMessage
}

// CheckError returns a *SessionError holding the message of the first
// "Error: <message>" found in output, nil otherwise.
func CheckError(output string) error {
	res := errorRegexp.FindStringSubmatch(output)
	if res == nil {
		return nil
	}
	return &SessionError{Message: res[1]}
}
