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
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultPath is where the utility is installed by the HPE packages.
	DefaultPath = "/usr/sbin/hpacucli"

	// DefaultTimeout bounds the wait for the prompt after a command.
	DefaultTimeout = 30 * time.Second

	// DefaultLaunchTimeout bounds the wait for the first prompt.
	DefaultLaunchTimeout = 30 * time.Second

	exitCommand = "exit"
	readSize    = 4096
)

var (
	promptRegexp = regexp.MustCompile(`=> `)

	errTimeout = errors.New("timed out waiting for prompt")
)

type state int

const (
	stateNotStarted state = iota
	stateReady
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateNotStarted:
		return "not-started"
	case stateReady:
		return "ready"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// Option configures a Session.
type Option func(*Session)

// WithTimeout sets how long Send waits for the prompt.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithLaunchTimeout sets how long Launch waits for the first prompt.
func WithLaunchTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.launchTimeout = d
	}
}

// WithLogger sets the logger receiving the diagnostic events of the session,
// among them the exact text of every command sent.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// Session drives one interactive hpacucli process. Commands are serialized,
// a Session runs a single command at a time.
type Session struct {
	mu sync.Mutex

	path          string
	spawn         Spawner
	exists        func(string) bool
	timeout       time.Duration
	launchTimeout time.Duration
	log           *zap.Logger

	state  state
	proc   Process
	output chan []byte
	buf    bytes.Buffer
	eof    bool
}

// NewSession returns a session for the utility installed at DefaultPath. The
// process is not started until Launch is called.
func NewSession(opts ...Option) *Session {
	s := &Session{
		path:          DefaultPath,
		spawn:         SpawnPTY,
		exists:        fileExists,
		timeout:       DefaultTimeout,
		launchTimeout: DefaultLaunchTimeout,
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Launch starts the utility and waits for its first prompt. It returns false
// when the utility is not installed or did not come up, in which case the
// session can be launched again later.
func (s *Session) Launch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateNotStarted {
		return s.state == stateReady
	}

	if !s.exists(s.path) {
		s.log.Info("hpacucli not installed", zap.String("path", s.path))
		return false
	}

	proc, err := s.spawn(s.path)
	if err != nil {
		s.log.Error("unable to spawn hpacucli", zap.String("path", s.path), zap.Error(err))
		return false
	}

	s.proc = proc
	s.output = make(chan []byte, 64)
	s.eof = false
	go readLoop(proc, s.output)

	if _, err := s.expect(s.launchTimeout); err != nil {
		s.log.Error("hpacucli prompt not received", zap.String("path", s.path), zap.Error(err))
		s.release()
		return false
	}

	s.state = stateReady
	s.log.Debug("hpacucli session ready", zap.String("path", s.path))
	return true
}

// Send writes line to the utility, waits for the next prompt and returns what
// was printed in between, without the echoed command. Output holding an
// "Error: <message>" line, as well as a timeout, yield a *SessionError.
func (s *Session) Send(line string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateReady {
		s.log.Debug("command rejected", zap.String("command", line), zap.Stringer("state", s.state))
		return "", ErrNotReady
	}

	s.log.Debug("sending command", zap.String("command", line))

	if _, err := io.WriteString(s.proc, line+"\n"); err != nil {
		return "", fmt.Errorf("unable to send command %q: %w", line, err)
	}

	var out string
	before, err := s.expect(s.timeout)
	switch {
	case errors.Is(err, errTimeout):
		s.log.Warn("command timed out", zap.String("command", line), zap.Duration("timeout", s.timeout))
		out = "Error: " + TimeoutMessage
	case err != nil:
		s.state = stateClosed
		s.release()
		return "", err
	default:
		out = stripEcho(strings.ReplaceAll(before, "\r\n", "\n"), line)
	}

	if err := CheckError(out); err != nil {
		return "", err
	}
	return out, nil
}

// Close stops the utility and releases its terminal. It is safe to call more
// than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	s.state = stateClosed
	if s.proc == nil {
		return nil
	}
	if prev == stateReady {
		// best effort, the process is killed below anyway
		_, _ = io.WriteString(s.proc, exitCommand+"\n")
	}
	return s.release()
}

// expect consumes the buffered output up to and including the next prompt and
// returns the text found before it.
func (s *Session) expect(timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		if loc := promptRegexp.FindIndex(s.buf.Bytes()); loc != nil {
			before := string(s.buf.Bytes()[:loc[0]])
			s.buf.Next(loc[1])
			return before, nil
		}
		if s.eof {
			return "", ErrProcessExited
		}

		select {
		case b, ok := <-s.output:
			if !ok {
				s.eof = true
				continue
			}
			s.buf.Write(b)
		case <-timer.C:
			return "", errTimeout
		}
	}
}

func (s *Session) release() error {
	err := s.proc.Close()
	go drain(s.output)
	s.proc = nil
	s.output = nil
	s.buf.Reset()
	return err
}

func readLoop(r io.Reader, out chan<- []byte) {
	defer close(out)
	for {
		b := make([]byte, readSize)
		n, err := r.Read(b)
		if n > 0 {
			out <- b[:n]
		}
		if err != nil {
			return
		}
	}
}

func drain(ch <-chan []byte) {
	for range ch {
	}
}

// the terminal echoes the command before its output
func stripEcho(out, line string) string {
	if len(out) < len(line) {
		return ""
	}
	return out[len(line):]
}
