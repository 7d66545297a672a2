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

package logger

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/comcast/smartarray/common"
	"github.com/comcast/smartarray/config"
	"github.com/hashicorp/go-retryablehttp"
)

// vectorSink ships every encoded log entry to a vector http source.
type vectorSink struct {
	client   *retryablehttp.Client
	endpoint *url.URL
}

func newVectorSink(u *url.URL) *vectorSink {
	tr := &http.Transport{
		Dial: (&net.Dialer{
			Timeout: 3 * time.Second,
		}).Dial,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.GetConfig().InsecureSkipVerify,
		},
		TLSHandshakeTimeout: 10 * time.Second,
	}

	retryClient := retryablehttp.NewClient()
	retryClient.CheckRetry = retryablehttp.ErrorPropagatedRetryPolicy
	retryClient.HTTPClient.Transport = tr
	retryClient.HTTPClient.Timeout = 30 * time.Second
	retryClient.Logger = nil
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 1 * time.Second
	retryClient.RetryMax = 2

	return &vectorSink{
		client:   retryClient,
		endpoint: u,
	}
}

// Write implements zapcore.WriteSyncer
func (v *vectorSink) Write(b []byte) (int, error) {
	req, err := retryablehttp.NewRequest(http.MethodPost, v.endpoint.String(), b)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "smartarray-vector-http")

	resp, err := v.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer common.EmptyAndCloseBody(resp)

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("vector endpoint returned HTTP status %d", resp.StatusCode)
	}

	return len(b), nil
}

// Sync implements zapcore.WriteSyncer, entries are sent as they are written
func (v *vectorSink) Sync() error {
	return nil
}
