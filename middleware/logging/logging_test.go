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

package logging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func Test_LoggingHandler(t *testing.T) {
	assert := assert.New(t)

	core, logs := observer.New(zap.InfoLevel)
	undo := zap.ReplaceGlobals(zap.New(core))
	defer undo()

	var seen string
	h := LoggingHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = TraceID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/controllers", nil))

	assert.Equal(http.StatusTeapot, rr.Code)
	assert.Len(seen, 32)

	entries := logs.FilterMessage("finished handling").All()
	if assert.Len(entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(int64(http.StatusTeapot), fields["status"])
		assert.Equal(seen, fields["trace_id"])
		assert.Equal("/controllers", fields["url"])
	}
}

func Test_TraceID(t *testing.T) {
	assert.Equal(t, "", TraceID(context.Background()))
	assert.Equal(t, "", TraceID(nil))

	a := TraceID(WithTraceID(context.Background()))
	b := TraceID(WithTraceID(context.Background()))
	assert.NotEqual(t, a, b)
}
