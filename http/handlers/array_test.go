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

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/comcast/smartarray/common"
	"github.com/comcast/smartarray/hpacucli"
	"github.com/stretchr/testify/assert"
)

type fakeArray struct {
	calls     []string
	err       error
	createErr error
}

func (f *fakeArray) Controllers() ([]hpacucli.Controller, error) {
	f.calls = append(f.calls, "controllers")
	if f.err != nil {
		return nil, f.err
	}
	return []hpacucli.Controller{{Slot: 0, Model: "Smart Array P410i", SerialNumber: "5001438011DE5540"}}, nil
}

func (f *fakeArray) LogicalDrives(selector string) ([]hpacucli.ArrayGroup[hpacucli.LogicalDrive], error) {
	f.calls = append(f.calls, "ld "+selector)
	if f.err != nil {
		return nil, f.err
	}
	return []hpacucli.ArrayGroup[hpacucli.LogicalDrive]{
		{Label: "array A", Members: []hpacucli.LogicalDrive{{Name: "1", RAIDLevel: "RAID 1", Size: "136.7 GB", Status: "OK"}}},
	}, nil
}

func (f *fakeArray) PhysicalDrives(selector string) ([]hpacucli.ArrayGroup[hpacucli.PhysicalDrive], error) {
	f.calls = append(f.calls, "pd "+selector)
	if f.err != nil {
		return nil, f.err
	}
	return []hpacucli.ArrayGroup[hpacucli.PhysicalDrive]{
		{Label: "unassigned", Members: []hpacucli.PhysicalDrive{{Name: "2I:1:5", Interface: "SATA", Size: "1 TB", Status: "OK"}}},
	}, nil
}

func (f *fakeArray) LogicalDrive(selector, id string) (hpacucli.LogicalDriveDetail, error) {
	f.calls = append(f.calls, "ld "+selector+" "+id)
	if f.err != nil {
		return nil, f.err
	}
	return hpacucli.LogicalDriveDetail{"Disk Name": "/dev/sda", "Status": "OK"}, nil
}

func (f *fakeArray) CreateLogicalDrive(selector string, drives []string, raid string) (string, error) {
	f.calls = append(f.calls, fmt.Sprintf("create %s %s %s", selector, strings.Join(drives, ","), raid))
	if f.createErr != nil {
		return "", f.createErr
	}
	return "/dev/sdb", nil
}

func (f *fakeArray) DeleteConfig(selector string) error {
	f.calls = append(f.calls, "delete "+selector)
	return f.err
}

func serve(api *API, method, target, body, token string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	api.Register(mux)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func Test_API_Queries(t *testing.T) {
	tests := []struct {
		name   string
		target string
		call   string
		want   string
	}{
		{
			name:   "controllers",
			target: "/controllers",
			call:   "controllers",
			want:   `[{"slot":0,"model":"Smart Array P410i","serial_number":"5001438011DE5540"}]`,
		},
		{
			name:   "logical drives by slot number",
			target: "/controllers/0/logicaldrives",
			call:   "ld slot=0",
			want:   `[{"label":"array A","members":[{"name":"1","raid_level":"RAID 1","size":"136.7 GB","status":"OK"}]}]`,
		},
		{
			name:   "physical drives by selector",
			target: "/controllers/slot=3/physicaldrives",
			call:   "pd slot=3",
			want:   `[{"label":"unassigned","members":[{"name":"2I:1:5","interface":"SATA","size":"1 TB","status":"OK"}]}]`,
		},
		{
			name:   "logical drive detail",
			target: "/controllers/first/logicaldrives/1",
			call:   "ld first 1",
			want:   `{"Disk Name":"/dev/sda","Status":"OK"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeArray{}
			rec := serve(&API{Client: f}, http.MethodGet, tt.target, "", "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
			assert.Equal(t, []string{tt.call}, f.calls)
		})
	}
}

func Test_API_BadInput(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"selector with arguments", http.MethodGet, "/controllers/slot=0%20delete/logicaldrives", ""},
		{"selector all", http.MethodGet, "/controllers/all/physicaldrives", ""},
		{"logical drive id", http.MethodGet, "/controllers/0/logicaldrives/a", ""},
		{"empty body", http.MethodPost, "/controllers/0/logicaldrives", ""},
		{"no drives", http.MethodPost, "/controllers/0/logicaldrives", `{"drives":[],"raid":"1"}`},
		{"bad drive", http.MethodPost, "/controllers/0/logicaldrives", `{"drives":["1I:1:1 raid=0"],"raid":"1"}`},
		{"bad raid", http.MethodPost, "/controllers/0/logicaldrives", `{"drives":["1I:1:1"],"raid":"1 forced"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeArray{}
			rec := serve(&API{Client: f, Tokens: common.NewStaticTokenStore("admin")}, tt.method, tt.target, tt.body, "admin")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
			assert.Empty(t, f.calls)
		})
	}
}

func Test_API_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		body string
	}{
		{"utility error", &hpacucli.SessionError{Message: "The controller identified by \"slot=9\" was not detected."}, http.StatusBadGateway, `{"error":"hpacucli: The controller identified by \"slot=9\" was not detected."}`},
		{"timeout", &hpacucli.SessionError{Message: hpacucli.TimeoutMessage}, http.StatusBadGateway, `{"error":"hpacucli: timeout"}`},
		{"not ready", hpacucli.ErrNotReady, http.StatusServiceUnavailable, ""},
		{"process exited", fmt.Errorf("send: %w", hpacucli.ErrProcessExited), http.StatusServiceUnavailable, ""},
		{"other", errors.New("boom"), http.StatusInternalServerError, `{"error":"boom"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&API{Client: &fakeArray{err: tt.err}}, http.MethodGet, "/controllers", "", "")

			assert.Equal(t, tt.want, rec.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, rec.Body.String())
			}
		})
	}
}

func Test_API_CreateLogicalDrive(t *testing.T) {
	f := &fakeArray{}
	api := &API{Client: f, Tokens: common.NewStaticTokenStore("admin")}

	rec := serve(api, http.MethodPost, "/controllers/slot=0/logicaldrives", `{"drives":["1I:1:1","1I:1:2"],"raid":"1+0"}`, "admin")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"disk_name":"/dev/sdb"}`, rec.Body.String())
	assert.Equal(t, []string{"create slot=0 1I:1:1,1I:1:2 1+0"}, f.calls)

	f = &fakeArray{createErr: fmt.Errorf("logical drive 2: %w", hpacucli.ErrNoDiskName)}
	rec = serve(&API{Client: f, Tokens: common.NewStaticTokenStore("admin")}, http.MethodPost, "/controllers/0/logicaldrives", `{"drives":["1I:1:1"],"raid":"0"}`, "admin")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func Test_API_DeleteConfig(t *testing.T) {
	f := &fakeArray{}
	rec := serve(&API{Client: f, Tokens: common.NewStaticTokenStore("admin")}, http.MethodDelete, "/controllers/0/config", "", "admin")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"delete slot=0"}, f.calls)
}

func Test_API_RequireToken(t *testing.T) {
	tests := []struct {
		name   string
		tokens *common.TokenStore
		token  string
		want   int
	}{
		{"no token source", nil, "admin", http.StatusForbidden},
		{"empty static token", common.NewStaticTokenStore(""), "admin", http.StatusForbidden},
		{"missing token", common.NewStaticTokenStore("admin"), "", http.StatusUnauthorized},
		{"wrong token", common.NewStaticTokenStore("admin"), "guess", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeArray{}
			api := &API{Client: f, Tokens: tt.tokens}

			rec := serve(api, http.MethodDelete, "/controllers/0/config", "", tt.token)
			assert.Equal(t, tt.want, rec.Code)

			rec = serve(api, http.MethodPost, "/controllers/0/logicaldrives", `{"drives":["1I:1:1"],"raid":"0"}`, tt.token)
			assert.Equal(t, tt.want, rec.Code)

			assert.Empty(t, f.calls)
		})
	}
}
