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
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// Process is a running utility attached to a terminal. Read returns what the
// utility prints, Write feeds its input. Close must release the terminal and
// reap the process.
type Process interface {
	io.ReadWriteCloser
}

// Spawner starts the utility found at path.
type Spawner func(path string) (Process, error)

// wide enough that the utility never wraps a report line
var ptySize = &pty.Winsize{Rows: 50, Cols: 512}

type ptyProcess struct {
	cmd *exec.Cmd
	tty *os.File
}

// SpawnPTY starts path on a new pseudo terminal.
func SpawnPTY(path string) (Process, error) {
	cmd := exec.Command(path)
	cmd.Env = append(os.Environ(), "TERM=dumb")

	tty, err := pty.StartWithSize(cmd, ptySize)
	if err != nil {
		return nil, err
	}
	return &ptyProcess{cmd: cmd, tty: tty}, nil
}

func (p *ptyProcess) Read(b []byte) (int, error) {
	return p.tty.Read(b)
}

func (p *ptyProcess) Write(b []byte) (int, error) {
	return p.tty.Write(b)
}

func (p *ptyProcess) Close() error {
	err := p.tty.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		_ = p.cmd.Wait()
	}
	return err
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
