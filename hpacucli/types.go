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

// UnassignedLabel is the group label the utility prints for drives that are
// not part of any array.
const UnassignedLabel = "unassigned"

// Controller is one entry of the "ctrl all show" report.
type Controller struct {
	Slot         int    `json:"slot" yaml:"slot"`
	Model        string `json:"model" yaml:"model"`
	SerialNumber string `json:"serial_number" yaml:"serial_number"`
}

// LogicalDrive is one "logicaldrive" line of the "ld all show" report.
type LogicalDrive struct {
	Name      string `json:"name" yaml:"name"`
	RAIDLevel string `json:"raid_level" yaml:"raid_level"`
	Size      string `json:"size" yaml:"size"`
	Status    string `json:"status" yaml:"status"`
}

// PhysicalDrive is one "physicaldrive" line of the "pd all show" report. The
// port/box/bay information is not kept, the drive name already encodes it.
type PhysicalDrive struct {
	Name      string `json:"name" yaml:"name"`
	Interface string `json:"interface" yaml:"interface"`
	Size      string `json:"size" yaml:"size"`
	Status    string `json:"status" yaml:"status"`
}

// ArrayGroup holds the drives listed under an "array X" or "unassigned" header.
type ArrayGroup[T any] struct {
	Label   string `json:"label" yaml:"label"`
	Members []T    `json:"members" yaml:"members"`
}

// LogicalDriveDetail maps the field labels of the "ld <id> show" report to
// their values. The set of keys depends on the controller firmware.
type LogicalDriveDetail map[string]string

// DiskNameField is the detail field holding the OS device of a logical drive.
const DiskNameField = "Disk Name"

// DiskName returns the OS device name of the logical drive, e.g. /dev/sda.
func (d LogicalDriveDetail) DiskName() (string, bool) {
	v, ok := d[DiskNameField]
	return v, ok
}
