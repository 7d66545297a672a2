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

type indexAppData struct {
	Date     string
	Revision string
	Version  string
	Sessions int
	Writable bool
}

const indexTmpl string = `<html>
  <head>
    <title>Smart Array Exporter</title>
    <style>
      .links, .build-info {
        display: flex;
      }
      h3, p {
        padding-right: 1em;
      }
      label {
        display: inline-block;
        width: 75px;
      }
    </style>
  </head>
  <body>
    <h1>Smart Array Exporter</h1>
    <div class="build-info">
      <p><b>build date:</b> {{ .Date }}</p>
      <p><b>revision:</b> {{ .Revision }}</p>
      <p><b>version:</b> {{ .Version }}</p>
      <p><b>hpacucli sessions:</b> {{ .Sessions }}</p>
    </div>
    <div class="links">
      <h3><a href="metrics">Metrics</a></h3>
      <h3><a href="scrape">Scrape</a></h3>
      <h3><a href="controllers">Controllers</a></h3>
      <h3><a href="info">Build Info</a></h3>
    </div>
    <form action="scrape">
      <label>Details:</label> <input type="checkbox" name="logical_drive_details" value="true"> logical drive disk names<br>
      <input type="submit" value="Scrape">
    </form>
    {{ if .Writable }}
    <p>create and delete endpoints are enabled, they require the admin bearer token</p>
    {{ else }}
    <p>create and delete endpoints are disabled, no admin token is configured</p>
    {{ end }}
  </body>
</html>
`
