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

package muxprom

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func Test_Middleware_CountsByRoute(t *testing.T) {
	assert := assert.New(t)

	reg := prometheus.NewRegistry()
	i := NewInstrumentation(reg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /controllers/{selector}/logicaldrives", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	})
	h := i.Middleware(mux)

	for _, path := range []string{"/controllers/slot=0/logicaldrives", "/controllers/slot=3/logicaldrives", "/nope"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(2.0, testutil.ToFloat64(i.reqTotal.WithLabelValues("200", "GET", "GET /controllers/{selector}/logicaldrives")))
	assert.Equal(1.0, testutil.ToFloat64(i.reqTotal.WithLabelValues("404", "GET", unmatchedRoute)))
}
