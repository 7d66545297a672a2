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
	"github.com/prometheus/client_golang/prometheus"
)

type metrics map[string]*prometheus.GaugeVec

func newServerMetric(metricName string, docString string, constLabels prometheus.Labels, labelNames []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        metricName,
			Help:        docString,
			ConstLabels: constLabels,
		},
		labelNames,
	)
}

func NewDeviceMetrics() *map[string]*metrics {
	var (
		UpMetric = &metrics{
			"up": newServerMetric("up", "was the last scrape of smartarray successful.", nil, []string{}),
		}

		ControllerMetrics = &metrics{
			"controllerInfo": newServerMetric("smartarray_controller_info", "Smart Array controller found by hpacucli, always 1", nil, []string{"slot", "model", "serialNumber"}),
		}

		// Logical drives are keyed by controller slot and name, names are only unique per controller
		LogicalDriveMetrics = &metrics{
			"logicalDriveStatus": newServerMetric("smartarray_logical_drive_status", "Current logical drive status 1 = OK, 0 = BAD", nil, []string{"slot", "array", "name", "raid", "size", "diskName"}),
		}

		PhysicalDriveMetrics = &metrics{
			"physicalDriveStatus": newServerMetric("smartarray_physical_drive_status", "Current physical drive status 1 = OK, 0 = BAD", nil, []string{"slot", "array", "name", "interface", "size"}),
		}

		ArrayMetrics = &metrics{
			"arrayMembers": newServerMetric("smartarray_array_members", "Number of drives listed under an array, kind is logical or physical", nil, []string{"slot", "array", "kind"}),
		}

		Metrics = &map[string]*metrics{
			"up":                   UpMetric,
			"controllerMetrics":    ControllerMetrics,
			"logicalDriveMetrics":  LogicalDriveMetrics,
			"physicalDriveMetrics": PhysicalDriveMetrics,
			"arrayMetrics":         ArrayMetrics,
		}
	)

	return Metrics
}
