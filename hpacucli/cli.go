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
	"fmt"
	"strings"
)

// Sender sends one command line to the utility and returns its output.
// *Session is the Sender used outside of tests.
type Sender interface {
	Send(line string) (string, error)
}

// Cli runs hpacucli sub-commands and parses their reports.
type Cli struct {
	sender Sender
}

// NewCli returns a Cli sending its commands through sender.
func NewCli(sender Sender) *Cli {
	return &Cli{sender: sender}
}

// SlotSelector returns the controller selector for the controller in slot.
func SlotSelector(slot int) string {
	return fmt.Sprintf("slot=%d", slot)
}

// Controllers runs "ctrl all show".
func (c *Cli) Controllers() ([]Controller, error) {
	out, err := c.sender.Send("ctrl all show")
	if err != nil {
		return nil, err
	}
	return ParseControllers(out), nil
}

// PhysicalDrives runs "ctrl <selector> pd all show".
func (c *Cli) PhysicalDrives(selector string) ([]ArrayGroup[PhysicalDrive], error) {
	out, err := c.sender.Send(fmt.Sprintf("ctrl %s pd all show", selector))
	if err != nil {
		return nil, err
	}
	return ParsePhysicalDrives(out), nil
}

// LogicalDrives runs "ctrl <selector> ld all show".
func (c *Cli) LogicalDrives(selector string) ([]ArrayGroup[LogicalDrive], error) {
	out, err := c.sender.Send(fmt.Sprintf("ctrl %s ld all show", selector))
	if err != nil {
		return nil, err
	}
	return ParseLogicalDrives(out), nil
}

// LogicalDrive runs "ctrl <selector> ld <id> show".
func (c *Cli) LogicalDrive(selector, id string) (LogicalDriveDetail, error) {
	out, err := c.sender.Send(fmt.Sprintf("ctrl %s ld %s show", selector, id))
	if err != nil {
		return nil, err
	}
	return ParseLogicalDriveDetail(out), nil
}

// DeleteConfig runs "ctrl <selector> delete forced", wiping every array and
// logical drive of the controller.
func (c *Cli) DeleteConfig(selector string) error {
	_, err := c.sender.Send(fmt.Sprintf("ctrl %s delete forced", selector))
	return err
}

// CreateLogicalDrive creates a logical drive of the given RAID level out of
// drives and returns its OS device name, e.g. /dev/sdb.
//
// The new logical drive is taken to be the first one of the last array listed
// after the create command. The utility gives no other way to find it.
func (c *Cli) CreateLogicalDrive(selector string, drives []string, raid string) (string, error) {
	_, err := c.sender.Send(fmt.Sprintf("ctrl %s create type=ld drives=%s raid=%s",
		selector, strings.Join(drives, ","), raid))
	if err != nil {
		return "", err
	}

	arrays, err := c.LogicalDrives(selector)
	if err != nil {
		return "", err
	}
	if len(arrays) == 0 || len(arrays[len(arrays)-1].Members) == 0 {
		return "", ErrNoLogicalDrive
	}
	last := arrays[len(arrays)-1].Members[0].Name

	info, err := c.LogicalDrive(selector, last)
	if err != nil {
		return "", err
	}
	name, ok := info.DiskName()
	if !ok {
		return "", fmt.Errorf("logical drive %s: %w", last, ErrNoDiskName)
	}
	return name, nil
}
