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
	"regexp"
	"strconv"
	"strings"
)

var (
	// Smart Array P410i in Slot 0 (Embedded)    (sn: 5001438011DE5540)
	controllerRegexp = regexp.MustCompile(`^(.*) in Slot ([0-9]+).*\(sn: (.*)\)`)

	// physicaldrive 1I:1:2 (port 1I:box 1:bay 2, SATA, 1 TB, OK)
	physicalRegexp = regexp.MustCompile(`\s*physicaldrive (.*) \(.*, (.*), (.*), (.*)\)`)

	// logicaldrive 1 (RAID 1, 136.7 GB, OK)
	logicalRegexp = regexp.MustCompile(`\s*logicaldrive (.*) \((.*), (.*), (.*)\)`)
)

// ParseControllers parses the output of the "ctrl all show" sub-command.
func ParseControllers(output string) []Controller {
	ctrls := []Controller{}
	for _, line := range strings.Split(output, "\n") {
		res := controllerRegexp.FindStringSubmatch(line)
		if res == nil {
			continue
		}
		slot, err := strconv.Atoi(res[2])
		if err != nil {
			// more digits than an int holds, not a real slot
			continue
		}
		ctrls = append(ctrls, Controller{
			Slot:         slot,
			Model:        res[1],
			SerialNumber: res[3],
		})
	}
	return ctrls
}

// ParseLogicalDrives parses the output of the "ctrl <sel> ld all show"
// sub-command.
func ParseLogicalDrives(output string) []ArrayGroup[LogicalDrive] {
	return parseGroups(output, logicalRegexp, func(m []string) LogicalDrive {
		return LogicalDrive{Name: m[1], RAIDLevel: m[2], Size: m[3], Status: m[4]}
	})
}

// ParsePhysicalDrives parses the output of the "ctrl <sel> pd all show"
// sub-command.
func ParsePhysicalDrives(output string) []ArrayGroup[PhysicalDrive] {
	return parseGroups(output, physicalRegexp, func(m []string) PhysicalDrive {
		return PhysicalDrive{Name: m[1], Interface: m[2], Size: m[3], Status: m[4]}
	})
}

// parseGroups turns lines like
//
//	array C
//
//	   physicaldrive 1I:1:2 (port 1I:box 1:bay 2, SATA, 1 TB, OK)
//
// into one group per "array ..." or "unassigned" header. Entry lines seen
// before the first header are dropped.
func parseGroups[T any](output string, re *regexp.Regexp, build func([]string) T) []ArrayGroup[T] {
	groups := []ArrayGroup[T]{}
	var cur *ArrayGroup[T]

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "array") || line == UnassignedLabel {
			if cur != nil {
				groups = append(groups, *cur)
			}
			cur = &ArrayGroup[T]{Label: line, Members: []T{}}
			continue
		}
		if cur == nil {
			continue
		}
		if res := re.FindStringSubmatch(line); res != nil {
			cur.Members = append(cur.Members, build(res))
		}
	}

	if cur != nil {
		groups = append(groups, *cur)
	}
	return groups
}

// detailParser consumes the "ctrl <sel> ld <id> show" report one line at a
// time. A field with an empty value takes the following line as its value.
type detailParser struct {
	fields  LogicalDriveDetail
	pending string
	waiting bool
}

func (p *detailParser) feed(line string) {
	if p.waiting {
		if res := physicalRegexp.FindStringSubmatch(strings.TrimSpace(line)); res != nil {
			p.fields[p.pending] = res[1]
		} else {
			p.fields[p.pending] = line
		}
		p.pending, p.waiting = "", false
		return
	}

	parts := strings.Split(line, ":")
	if len(parts) != 2 {
		return
	}
	key, value := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if value == "" {
		p.pending, p.waiting = key, true
		return
	}
	p.fields[key] = value
}

// ParseLogicalDriveDetail parses the output of the "ctrl <sel> ld <id> show"
// sub-command into its fields. Lines that are not "key: value" pairs are
// ignored, a repeated key keeps its last value.
func ParseLogicalDriveDetail(output string) LogicalDriveDetail {
	p := detailParser{fields: LogicalDriveDetail{}}
	for _, line := range strings.Split(output, "\n") {
		p.feed(line)
	}
	return p.fields
}
