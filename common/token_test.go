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
	"errors"
	"testing"

	"github.com/comcast/smartarray/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	tokens []string
	err    error
	calls  int
}

func (f *fakeSource) GetAPIToken(ctx context.Context, props *vault.SecretProperties) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	token := f.tokens[0]
	if len(f.tokens) > 1 {
		f.tokens = f.tokens[1:]
	}
	return token, nil
}

func Test_TokenStore_Static(t *testing.T) {
	s := NewStaticTokenStore("s3cret")
	assert.True(t, s.Configured())

	ok, err := s.Verify(context.Background(), "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Verify(context.Background(), "guess")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Verify(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func Test_TokenStore_Unconfigured(t *testing.T) {
	var nilStore *TokenStore
	assert.False(t, nilStore.Configured())
	assert.False(t, NewStaticTokenStore("").Configured())

	_, err := NewStaticTokenStore("").Verify(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNoTokenSource)
}

func Test_TokenStore_Vault(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{tokens: []string{"first", "second"}}
	s := NewVaultTokenStore(src, nil)

	ok, err := s.Verify(ctx, "first")
	require.NoError(t, err)
	assert.True(t, ok)

	// cached
	ok, err = s.Verify(ctx, "first")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, src.calls)

	// rotated secret, a mismatch refreshes once
	ok, err = s.Verify(ctx, "second")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, src.calls)

	ok, err = s.Verify(ctx, "first")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, src.calls)
}

func Test_TokenStore_VaultError(t *testing.T) {
	src := &fakeSource{err: errors.New("vault sealed")}
	s := NewVaultTokenStore(src, &vault.SecretProperties{MountPath: "kv2"})

	ok, err := s.Verify(context.Background(), "token")
	assert.Error(t, err)
	assert.False(t, ok)
}
