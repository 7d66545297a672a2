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
	"context"
	"strconv"
	"sync"

	"github.com/comcast/smartarray/hpacucli"
	"github.com/comcast/smartarray/middleware/logging"
	"github.com/comcast/smartarray/pool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	// OK is a string representation of the float 1.0 for device status
	OK = 1.0
	// BAD is a string representation of the float 0.0 for device status
	BAD = 0.0
)

// Client runs the hpacucli queries the exporter needs. *hpacucli.Cli
// implements it.
type Client interface {
	Controllers() ([]hpacucli.Controller, error)
	LogicalDrives(selector string) ([]hpacucli.ArrayGroup[hpacucli.LogicalDrive], error)
	PhysicalDrives(selector string) ([]hpacucli.ArrayGroup[hpacucli.PhysicalDrive], error)
	LogicalDrive(selector, id string) (hpacucli.LogicalDriveDetail, error)
}

// Exporter collects the state of the Smart Array controllers through hpacucli
// and exports it using the prometheus metrics package.
type Exporter struct {
	ctx           context.Context
	mutex         sync.Mutex
	clients       chan Client
	concurrency   int
	details       bool
	deviceMetrics *map[string]*metrics
}

// controllerReport is what one pool task gathers for one controller.
type controllerReport struct {
	controller hpacucli.Controller
	logical    []hpacucli.ArrayGroup[hpacucli.LogicalDrive]
	physical   []hpacucli.ArrayGroup[hpacucli.PhysicalDrive]
	diskNames  map[string]string
}

// NewExporter returns an Exporter scraping through clients, each backed by its
// own hpacucli session so that controllers are scraped in parallel. When
// details is set, every logical drive is queried for its disk name.
func NewExporter(ctx context.Context, clients []Client, details bool) *Exporter {
	exp := &Exporter{
		ctx:           ctx,
		clients:       make(chan Client, len(clients)),
		concurrency:   len(clients),
		details:       details,
		deviceMetrics: NewDeviceMetrics(),
	}
	for _, c := range clients {
		exp.clients <- c
	}
	return exp
}

// Describe describes all the metrics ever exported by the smartarray exporter. It
// implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range *e.deviceMetrics {
		for _, n := range *m {
			n.Describe(ch)
		}
	}
}

// Collect runs the hpacucli queries and delivers the results as Prometheus
// metrics. It implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.mutex.Lock() // To protect metrics from concurrent collects.
	defer e.mutex.Unlock()

	e.resetMetrics()
	e.scrape()
	e.collectMetrics(ch)
}

func (e *Exporter) resetMetrics() {
	for _, m := range *e.deviceMetrics {
		for _, n := range *m {
			n.Reset()
		}
	}
}

func (e *Exporter) collectMetrics(metrics chan<- prometheus.Metric) {
	for _, m := range *e.deviceMetrics {
		for _, n := range *m {
			n.Collect(metrics)
		}
	}
}

func (e *Exporter) setUp(state float64) {
	var upMetric = (*e.deviceMetrics)["up"]
	(*upMetric)["up"].WithLabelValues().Set(state)
}

// borrow runs f with a client nobody else is using.
func (e *Exporter) borrow(f func(Client) error) error {
	c := <-e.clients
	defer func() { e.clients <- c }()
	return f(c)
}

func (e *Exporter) scrape() {
	log := zap.L().With(zap.String("trace_id", logging.TraceID(e.ctx)))

	if e.concurrency == 0 {
		log.Error("no hpacucli session available")
		e.setUp(BAD)
		return
	}

	var ctrls []hpacucli.Controller
	err := e.borrow(func(c Client) error {
		var err error
		ctrls, err = c.Controllers()
		return err
	})
	if err != nil {
		log.Error("error listing controllers", zap.Error(err))
		e.setUp(BAD)
		return
	}

	reports := make([]*controllerReport, len(ctrls))
	p := pool.NewPool(nil, e.concurrency)
	for i, ctrl := range ctrls {
		reports[i] = &controllerReport{controller: ctrl}
		p.AddTask(pool.NewTask(hpacucli.SlotSelector(ctrl.Slot), func() error {
			return e.borrow(func(c Client) error {
				return e.scrapeController(c, reports[i])
			})
		}))
	}
	p.Run()

	state := OK
	for i, task := range p.Tasks {
		if task.Err != nil {
			log.Error("error scraping controller", zap.String("selector", task.Name), zap.Error(task.Err))
			state = BAD
			continue
		}
		e.exportController(reports[i])
	}
	e.setUp(state)
}

func (e *Exporter) scrapeController(c Client, r *controllerReport) error {
	selector := hpacucli.SlotSelector(r.controller.Slot)

	var err error
	if r.logical, err = c.LogicalDrives(selector); err != nil {
		// a controller without logical drives reports it as an error
		if !noLogicalDrives(err) {
			return err
		}
		r.logical = nil
	}
	if r.physical, err = c.PhysicalDrives(selector); err != nil {
		return err
	}

	if !e.details {
		return nil
	}
	r.diskNames = make(map[string]string)
	for _, array := range r.logical {
		for _, ld := range array.Members {
			detail, err := c.LogicalDrive(selector, ld.Name)
			if err != nil {
				return err
			}
			if name, ok := detail.DiskName(); ok {
				r.diskNames[ld.Name] = name
			}
		}
	}
	return nil
}

func (e *Exporter) exportController(r *controllerReport) {
	slot := strconv.Itoa(r.controller.Slot)

	var ctrlMetrics = (*e.deviceMetrics)["controllerMetrics"]
	(*ctrlMetrics)["controllerInfo"].WithLabelValues(slot, r.controller.Model, r.controller.SerialNumber).Set(1)

	e.exportLogicalDrives(slot, r.logical, r.diskNames)
	e.exportPhysicalDrives(slot, r.physical)
}
