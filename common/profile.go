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
	"fmt"

	"github.com/comcast/smartarray/vault"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v3"
)

// SecretProfile is the kingpin value of the flag locating the admin API token
// in vault. It accepts YAML or JSON, i.e.
//
//	mountPath: kv2
//	path: path/to/secret
//	secretName: smartarray
//	tokenField: token
type SecretProfile struct {
	Props *vault.SecretProperties
	raw   string
}

func (p *SecretProfile) Set(value string) error {
	props := &vault.SecretProperties{}
	if err := yaml.Unmarshal([]byte(value), props); err != nil {
		return fmt.Errorf("unable to parse secret profile: %w", err)
	}
	if props.MountPath == "" {
		return fmt.Errorf("secret profile is missing mountPath")
	}
	p.Props = props
	p.raw = value
	return nil
}

func (p *SecretProfile) String() string {
	return p.raw
}

// SecretProfileFlag binds a SecretProfile to a kingpin flag
func SecretProfileFlag(s kingpin.Settings) *SecretProfile {
	p := &SecretProfile{}
	s.SetValue(p)
	return p
}
