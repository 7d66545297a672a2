/*
 * Copyright 2023 Comcast Cable Communications Management, LLC
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

package exporter

import (
	"errors"
	"strings"

	"github.com/comcast/smartarray/hpacucli"
)

// driveState converts the status printed by hpacucli to a gauge value. Anything
// but OK (Failed, Rebuilding, Predictive Failure, Interim Recovery Mode...) is BAD.
func driveState(status string) float64 {
	if strings.TrimSpace(status) == "OK" {
		return OK
	}
	return BAD
}

func noLogicalDrives(err error) bool {
	var se *hpacucli.SessionError
	return errors.As(err, &se) && strings.Contains(se.Message, "does not have any logical drives")
}

// exportLogicalDrives sets the logical drive gauges of the controller in slot
func (e *Exporter) exportLogicalDrives(slot string, arrays []hpacucli.ArrayGroup[hpacucli.LogicalDrive], diskNames map[string]string) {
	var logical = (*e.deviceMetrics)["logicalDriveMetrics"]
	var members = (*e.deviceMetrics)["arrayMetrics"]

	for _, array := range arrays {
		(*members)["arrayMembers"].WithLabelValues(slot, array.Label, "logical").Set(float64(len(array.Members)))
		for _, ld := range array.Members {
			(*logical)["logicalDriveStatus"].WithLabelValues(slot, array.Label, ld.Name, ld.RAIDLevel, ld.Size, diskNames[ld.Name]).Set(driveState(ld.Status))
		}
	}
}

// exportPhysicalDrives sets the physical drive gauges of the controller in slot,
// unassigned drives are exported with the array label "unassigned"
func (e *Exporter) exportPhysicalDrives(slot string, arrays []hpacucli.ArrayGroup[hpacucli.PhysicalDrive]) {
	var physical = (*e.deviceMetrics)["physicalDriveMetrics"]
	var members = (*e.deviceMetrics)["arrayMetrics"]

	for _, array := range arrays {
		(*members)["arrayMembers"].WithLabelValues(slot, array.Label, "physical").Set(float64(len(array.Members)))
		for _, pd := range array.Members {
			(*physical)["physicalDriveStatus"].WithLabelValues(slot, array.Label, pd.Name, pd.Interface, pd.Size).Set(driveState(pd.Status))
		}
	}
}
