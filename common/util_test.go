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

package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/comcast/smartarray/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/alecthomas/kingpin.v2"
)

func Test_WriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, http.StatusBadGateway, errors.New("hpacucli: controller not found")))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"hpacucli: controller not found"}`, rec.Body.String())
}

func Test_DecodeJSON(t *testing.T) {
	type body struct {
		Drives []string `json:"drives"`
		RAID   string   `json:"raid"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"drives":["1I:1:1"],"raid":"0"}`, false},
		{"empty", ``, true},
		{"unknown field", `{"drives":["1I:1:1"],"level":"0"}`, true},
		{"malformed", `{"drives":`, true},
		{"trailing data", `{"raid":"0"} {"raid":"1"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var b body
			err := DecodeJSON(req, &b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"1I:1:1"}, b.Drives)
		})
	}
}

func Test_SecretProfile(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    *vault.SecretProperties
		wantErr bool
	}{
		{
			name: "yaml",
			arg:  "mountPath: kv2\npath: storage\ntokenField: admin\n",
			want: &vault.SecretProperties{MountPath: "kv2", Path: "storage", TokenField: "admin"},
		},
		{
			name: "json",
			arg:  `{"mountPath":"secret","secretName":"smartarray"}`,
			want: &vault.SecretProperties{MountPath: "secret", SecretName: "smartarray"},
		},
		{name: "missing mount", arg: `{"path":"storage"}`, wantErr: true},
		{name: "garbage", arg: `{mountPath`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := kingpin.New("test", "")
			profile := SecretProfileFlag(app.Flag("vault.secret", ""))
			_, err := app.Parse([]string{"--vault.secret", tt.arg})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, profile.Props)
			assert.Equal(t, tt.arg, profile.String())
		})
	}
}
