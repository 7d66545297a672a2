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
	"net/http/httptest"
	"testing"

	"github.com/comcast/smartarray/exporter"
	"github.com/stretchr/testify/assert"
)

func Test_ScrapeHandler(t *testing.T) {
	f := &fakeArray{}
	h := ScrapeHandler(&ScrapeConfig{Clients: []exporter.Client{f}, LogicalDriveDetails: true})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/scrape", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "up 1")
	assert.Contains(t, body, `smartarray_controller_info{model="Smart Array P410i",serialNumber="5001438011DE5540",slot="0"} 1`)
	assert.Contains(t, body, `smartarray_logical_drive_status{array="array A",diskName="/dev/sda",name="1",raid="RAID 1",size="136.7 GB",slot="0"} 1`)
	assert.Contains(t, body, `smartarray_physical_drive_status{array="unassigned",interface="SATA",name="2I:1:5",size="1 TB",slot="0"} 1`)
	assert.Contains(t, f.calls, "ld slot=0 1")
}

func Test_ScrapeHandler_DetailsOverride(t *testing.T) {
	f := &fakeArray{}
	h := ScrapeHandler(&ScrapeConfig{Clients: []exporter.Client{f}, LogicalDriveDetails: true})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/scrape?logical_drive_details=false", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, f.calls, "ld slot=0 1")
}

func Test_ScrapeHandler_BadParam(t *testing.T) {
	h := ScrapeHandler(&ScrapeConfig{})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/scrape?logical_drive_details=maybe", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_ScrapeHandler_NoSession(t *testing.T) {
	h := ScrapeHandler(&ScrapeConfig{})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/scrape", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "up 0")
}
