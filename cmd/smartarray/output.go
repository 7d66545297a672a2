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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/comcast/smartarray/hpacucli"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// printer writes command results in the selected format
type printer struct {
	w      io.Writer
	format string
}

// newPrinter defaults to a table when stdout is a terminal, json otherwise
func newPrinter(w io.Writer, format string) *printer {
	if format == "" {
		format = formatJSON
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = formatTable
		}
	}
	return &printer{w: w, format: format}
}

func (p *printer) print(v any, title string, header table.Row, rows []table.Row) error {
	switch p.format {
	case formatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case formatTable:
		t := table.NewWriter()
		t.SetOutputMirror(p.w)
		t.SetTitle(title)
		t.AppendHeader(header)
		t.AppendRows(rows)
		t.Render()
		return nil
	}
	return fmt.Errorf("unknown output format %q", p.format)
}

func (p *printer) controllers(ctrls []hpacucli.Controller) error {
	rows := make([]table.Row, len(ctrls))
	for i, c := range ctrls {
		rows[i] = table.Row{c.Slot, c.Model, c.SerialNumber}
	}
	return p.print(ctrls, "Controllers", table.Row{"Slot", "Model", "Serial Number"}, rows)
}

func (p *printer) logicalDrives(arrays []hpacucli.ArrayGroup[hpacucli.LogicalDrive]) error {
	var rows []table.Row
	for _, array := range arrays {
		for _, ld := range array.Members {
			rows = append(rows, table.Row{array.Label, ld.Name, ld.RAIDLevel, ld.Size, ld.Status})
		}
	}
	return p.print(arrays, "Logical Drives", table.Row{"Array", "Logical Drive", "RAID", "Size", "Status"}, rows)
}

func (p *printer) physicalDrives(arrays []hpacucli.ArrayGroup[hpacucli.PhysicalDrive]) error {
	var rows []table.Row
	for _, array := range arrays {
		for _, pd := range array.Members {
			rows = append(rows, table.Row{array.Label, pd.Name, pd.Interface, pd.Size, pd.Status})
		}
	}
	return p.print(arrays, "Physical Drives", table.Row{"Array", "Physical Drive", "Interface", "Size", "Status"}, rows)
}

func (p *printer) logicalDrive(detail hpacucli.LogicalDriveDetail) error {
	keys := make([]string, 0, len(detail))
	for k := range detail {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]table.Row, len(keys))
	for i, k := range keys {
		rows[i] = table.Row{k, detail[k]}
	}
	return p.print(detail, "Logical Drive", table.Row{"Field", "Value"}, rows)
}

func (p *printer) created(diskName string) error {
	return p.print(map[string]string{"disk_name": diskName}, "Created", table.Row{"Disk Name"}, []table.Row{{diskName}})
}
