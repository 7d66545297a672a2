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

package handlers

import (
	"net/http"
	"strconv"

	"github.com/comcast/smartarray/exporter"
	"github.com/comcast/smartarray/middleware/logging"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ScrapeConfig holds configuration for scrape handlers
type ScrapeConfig struct {
	// Clients are the hpacucli sessions available to a scrape, one per
	// controller is scraped in parallel
	Clients []exporter.Client
	// LogicalDriveDetails adds the disk name of every logical drive
	LogicalDriveDetails bool
}

// ScrapeHandler handles GET /scrape requests. The optional query param
// logical_drive_details overrides the configured default.
func ScrapeHandler(cfg *ScrapeConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := zap.L()

		details := cfg.LogicalDriveDetails
		if v := r.URL.Query().Get("logical_drive_details"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				log.Error("'logical_drive_details' parameter not set correctly", zap.String("logical_drive_details", v), zap.String("trace_id", logging.TraceID(ctx)))
				http.Error(w, "'logical_drive_details' parameter not set correctly", http.StatusBadRequest)
				return
			}
			details = b
		}

		log.Info("started scrape",
			zap.Int("sessions", len(cfg.Clients)),
			zap.Bool("logical_drive_details", details),
			zap.String("trace_id", logging.TraceID(ctx)))

		registry := prometheus.NewRegistry()
		registry.MustRegister(exporter.NewExporter(ctx, cfg.Clients, details))

		// Delegate http serving to Prometheus client library, which will call collector.Collect.
		h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		h.ServeHTTP(w, r)
	}
}
