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
	"regexp"
	"strconv"
	"strings"

	"github.com/comcast/smartarray/common"
	"github.com/comcast/smartarray/exporter"
	"github.com/comcast/smartarray/hpacucli"
	"github.com/comcast/smartarray/middleware/logging"
	"go.uber.org/zap"
)

var (
	// values end up on the hpacucli command line, anything that could add
	// arguments is refused
	selectorRegexp = regexp.MustCompile(`^(slot=[0-9]+|[0-9]+|first)$`)
	driveRegexp    = regexp.MustCompile(`^[0-9A-Za-z]+(:[0-9A-Za-z]+)*$`)
	raidRegexp     = regexp.MustCompile(`^[0-9A-Za-z+]+$`)
	idRegexp       = regexp.MustCompile(`^[0-9]+$`)

	errBadSelector = errors.New("invalid controller selector")
	errBadID       = errors.New("invalid logical drive id")
)

// ArrayClient is everything the API needs from hpacucli, *hpacucli.Cli
// implements it.
type ArrayClient interface {
	exporter.Client
	CreateLogicalDrive(selector string, drives []string, raid string) (string, error)
	DeleteConfig(selector string) error
}

// CreateRequest is the body of POST /controllers/{selector}/logicaldrives
type CreateRequest struct {
	Drives []string `json:"drives"`
	RAID   string   `json:"raid"`
}

// CreateResponse is returned once the logical drive exists
type CreateResponse struct {
	DiskName string `json:"disk_name"`
}

func (c *CreateRequest) validate() error {
	if len(c.Drives) == 0 {
		return errors.New("drives must not be empty")
	}
	for _, d := range c.Drives {
		if !driveRegexp.MatchString(d) {
			return fmt.Errorf("invalid drive %q", d)
		}
	}
	if !raidRegexp.MatchString(c.RAID) {
		return fmt.Errorf("invalid raid level %q", c.RAID)
	}
	return nil
}

// API serves the controllers of the host as JSON
type API struct {
	Client ArrayClient
	Tokens *common.TokenStore
}

// Register adds the API routes to mux
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /controllers", a.controllers)
	mux.HandleFunc("GET /controllers/{selector}/logicaldrives", a.logicalDrives)
	mux.HandleFunc("GET /controllers/{selector}/logicaldrives/{id}", a.logicalDrive)
	mux.HandleFunc("GET /controllers/{selector}/physicaldrives", a.physicalDrives)
	mux.Handle("POST /controllers/{selector}/logicaldrives", a.requireToken(http.HandlerFunc(a.createLogicalDrive)))
	mux.Handle("DELETE /controllers/{selector}/config", a.requireToken(http.HandlerFunc(a.deleteConfig)))
}

// Selector turns the selector path value into the hpacucli form, a bare
// number is a slot.
func Selector(value string) (string, error) {
	if !selectorRegexp.MatchString(value) {
		return "", errBadSelector
	}
	if n, err := strconv.Atoi(value); err == nil {
		return hpacucli.SlotSelector(n), nil
	}
	return value, nil
}

// StatusCode maps an hpacucli error to the status code of the response
func StatusCode(err error) int {
	var se *hpacucli.SessionError
	switch {
	case errors.Is(err, hpacucli.ErrNotReady), errors.Is(err, hpacucli.ErrProcessExited):
		return http.StatusServiceUnavailable
	case errors.As(err, &se), errors.Is(err, hpacucli.ErrNoLogicalDrive), errors.Is(err, hpacucli.ErrNoDiskName):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	zap.L().Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
		zap.String("trace_id", logging.TraceID(r.Context())))
	common.WriteError(w, status, err)
}

func (a *API) selector(w http.ResponseWriter, r *http.Request) (string, bool) {
	sel, err := Selector(r.PathValue("selector"))
	if err != nil {
		a.fail(w, r, http.StatusBadRequest, err)
		return "", false
	}
	return sel, true
}

func (a *API) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		a.fail(w, r, StatusCode(err), err)
		return
	}
	common.WriteJSON(w, http.StatusOK, v)
}

func (a *API) controllers(w http.ResponseWriter, r *http.Request) {
	ctrls, err := a.Client.Controllers()
	a.respond(w, r, ctrls, err)
}

func (a *API) logicalDrives(w http.ResponseWriter, r *http.Request) {
	sel, ok := a.selector(w, r)
	if !ok {
		return
	}
	arrays, err := a.Client.LogicalDrives(sel)
	a.respond(w, r, arrays, err)
}

func (a *API) physicalDrives(w http.ResponseWriter, r *http.Request) {
	sel, ok := a.selector(w, r)
	if !ok {
		return
	}
	arrays, err := a.Client.PhysicalDrives(sel)
	a.respond(w, r, arrays, err)
}

func (a *API) logicalDrive(w http.ResponseWriter, r *http.Request) {
	sel, ok := a.selector(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if !idRegexp.MatchString(id) {
		a.fail(w, r, http.StatusBadRequest, errBadID)
		return
	}
	detail, err := a.Client.LogicalDrive(sel, id)
	a.respond(w, r, detail, err)
}

func (a *API) createLogicalDrive(w http.ResponseWriter, r *http.Request) {
	sel, ok := a.selector(w, r)
	if !ok {
		return
	}

	var req CreateRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		a.fail(w, r, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		a.fail(w, r, http.StatusBadRequest, err)
		return
	}

	zap.L().Info("creating logical drive",
		zap.String("selector", sel),
		zap.Strings("drives", req.Drives),
		zap.String("raid", req.RAID),
		zap.String("trace_id", logging.TraceID(r.Context())))

	diskName, err := a.Client.CreateLogicalDrive(sel, req.Drives, req.RAID)
	if err != nil {
		a.fail(w, r, StatusCode(err), err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, CreateResponse{DiskName: diskName})
}

func (a *API) deleteConfig(w http.ResponseWriter, r *http.Request) {
	sel, ok := a.selector(w, r)
	if !ok {
		return
	}

	zap.L().Warn("deleting controller configuration",
		zap.String("selector", sel),
		zap.String("trace_id", logging.TraceID(r.Context())))

	if err := a.Client.DeleteConfig(sel); err != nil {
		a.fail(w, r, StatusCode(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireToken lets a request through only with the admin bearer token
func (a *API) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Tokens.Configured() {
			a.fail(w, r, http.StatusForbidden, common.ErrNoTokenSource)
			return
		}

		token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !found {
			w.Header().Set("WWW-Authenticate", "Bearer")
			a.fail(w, r, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		ok, err := a.Tokens.Verify(r.Context(), strings.TrimSpace(token))
		if err != nil {
			a.fail(w, r, http.StatusServiceUnavailable, fmt.Errorf("unable to verify admin token: %w", err))
			return
		}
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			a.fail(w, r, http.StatusUnauthorized, errors.New("invalid bearer token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
