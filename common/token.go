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
	"context"
	"crypto/subtle"
	"errors"
	"sync"

	"github.com/comcast/smartarray/vault"
	"go.uber.org/zap"
)

var (
	// ErrNoTokenSource is returned when neither a static token nor vault is configured
	ErrNoTokenSource = errors.New("no admin token source configured")
)

// SecretSource fetches the admin API token, *vault.Vault implements it.
type SecretSource interface {
	GetAPIToken(ctx context.Context, props *vault.SecretProperties) (string, error)
}

// TokenStore holds the token guarding the destructive API endpoints. The token
// is either static or read from vault and cached until a request presents a
// token that does not match, at which point vault is asked again once in case
// the secret was rotated.
type TokenStore struct {
	mu     sync.Mutex
	static string
	source SecretSource
	props  *vault.SecretProperties
	cached string
}

func NewStaticTokenStore(token string) *TokenStore {
	return &TokenStore{static: token}
}

func NewVaultTokenStore(source SecretSource, props *vault.SecretProperties) *TokenStore {
	if props == nil {
		props = &vault.SecretProperties{}
	}
	return &TokenStore{source: source, props: props}
}

// Configured reports whether the store can verify anything at all.
func (s *TokenStore) Configured() bool {
	return s != nil && (s.static != "" || s.source != nil)
}

// Verify reports whether presented is the admin token. An error is only
// returned when the token could not be obtained.
func (s *TokenStore) Verify(ctx context.Context, presented string) (bool, error) {
	if !s.Configured() {
		return false, ErrNoTokenSource
	}
	if presented == "" {
		return false, nil
	}
	if s.static != "" {
		return equal(s.static, presented), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != "" {
		if equal(s.cached, presented) {
			return true, nil
		}
		// the secret may have rotated since it was cached
		zap.L().Info("admin token mismatch, refreshing it from vault")
		s.cached = ""
	}

	token, err := s.source.GetAPIToken(ctx, s.props)
	if err != nil {
		return false, err
	}
	s.cached = token
	return equal(token, presented), nil
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
