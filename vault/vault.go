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

package vault

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"github.com/hashicorp/vault/api/auth/approle"
	"go.uber.org/zap"
)

const (
	// DefaultSecretName is read when the secret properties do not name one
	DefaultSecretName = "smartarray"
	// DefaultTokenField is the secret field holding the admin API token
	DefaultTokenField = "token"
	// DefaultRetryInterval is how long RenewToken waits after a failed login
	DefaultRetryInterval = 10 * time.Second
)

var (
	ErrBadTLSConfig = errors.New("bad TLS configuration")
	// ErrMissingField is returned when the secret exists but has no usable token field
	ErrMissingField = errors.New("secret field missing or not a string")
)

type Parameters struct {
	// connection and credential parameters
	Address         string
	ApproleRoleID   string
	ApproleSecretID string
	CACertBytes     []byte
}

// SecretProperties locates the admin API token in a kv-v1 or kv-v2 mount
type SecretProperties struct {
	MountPath  string `yaml:"mountPath" json:"mountPath"`
	Path       string `yaml:"path" json:"path"`
	SecretName string `yaml:"secretName" json:"secretName"`
	TokenField string `yaml:"tokenField" json:"tokenField"`
}

// secretPath joins the optional path prefix with the secret name, falling back
// to secret when the properties leave the name empty.
func (p *SecretProperties) secretPath(secret string) string {
	name := p.SecretName
	if name == "" {
		name = secret
	}
	if p.Path == "" {
		return name
	}
	return path.Join(p.Path, name)
}

func (p *SecretProperties) tokenField() string {
	if p.TokenField == "" {
		return DefaultTokenField
	}
	return p.TokenField
}

type Vault struct {
	mu            sync.RWMutex
	client        *vault.Client
	Parameters    Parameters
	RetryInterval time.Duration
	isLoggedIn    bool
}

// NewVaultAppRoleClient returns a client for the vault at parameters.Address.
// It does not log in, RenewToken does and keeps the token alive.
func NewVaultAppRoleClient(ctx context.Context, parameters Parameters) (*Vault, error) {
	config := vault.DefaultConfig()
	config.Address = parameters.Address
	if len(parameters.CACertBytes) > 0 {
		if err := config.ConfigureTLS(&vault.TLSConfig{
			CACertBytes: parameters.CACertBytes,
		}); err != nil {
			return nil, fmt.Errorf("unable to configure TLS: %w", err)
		}
	}

	client, err := vault.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize vault client: %w", err)
	}

	return &Vault{
		client:        client,
		Parameters:    parameters,
		RetryInterval: DefaultRetryInterval,
	}, nil
}

// A combination of a RoleID and a SecretID is required to log into Vault
// with AppRole authentication method.
func (v *Vault) login(ctx context.Context) (*vault.Secret, error) {
	v.mu.RLock()
	roleID := v.Parameters.ApproleRoleID
	secretID := v.Parameters.ApproleSecretID
	v.mu.RUnlock()

	appRoleAuth, err := approle.NewAppRoleAuth(
		roleID,
		&approle.SecretID{FromString: secretID},
	)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize approle authentication method: %w", err)
	}

	authInfo, err := v.client.Auth().Login(ctx, appRoleAuth)
	if err != nil {
		return nil, fmt.Errorf("unable to login using approle auth method: %w", err)
	}
	if authInfo == nil {
		return nil, errors.New("no auth info was returned after login")
	}

	return authInfo, nil
}

// GetKVSecret fetches the latest version of a secret from a kv-v1 mount, or
// from kv-v2 when the mount is named kv2.
func (v *Vault) GetKVSecret(ctx context.Context, props *SecretProperties, secret string) (*vault.KVSecret, error) {
	var kvSecret *vault.KVSecret
	var err error

	secretPath := props.secretPath(secret)
	if props.MountPath != "kv2" {
		kvSecret, err = v.client.KVv1(props.MountPath).Get(ctx, secretPath)
	} else {
		kvSecret, err = v.client.KVv2(props.MountPath).Get(ctx, secretPath)
	}
	if err != nil {
		return kvSecret, fmt.Errorf("unable to read secret %s: %w", secretPath, err)
	}

	return kvSecret, nil
}

// GetAPIToken reads the admin API token described by props.
func (v *Vault) GetAPIToken(ctx context.Context, props *SecretProperties) (string, error) {
	kvSecret, err := v.GetKVSecret(ctx, props, DefaultSecretName)
	if err != nil {
		return "", err
	}

	token, ok := kvSecret.Data[props.tokenField()].(string)
	if !ok || token == "" {
		return "", fmt.Errorf("%s: %w", props.tokenField(), ErrMissingField)
	}
	return token, nil
}

func (v *Vault) IsLoggedIn() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.isLoggedIn
}

func (v *Vault) setLoggedIn(b bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.isLoggedIn = b
}

// RenewToken logs in and keeps the auth token renewed until stop is closed,
// logging in again whenever the token can no longer be renewed. The token is
// revoked on the way out. wg.Done is called on return.
func (v *Vault) RenewToken(ctx context.Context, stop <-chan struct{}, wg *sync.WaitGroup) {
	log := zap.L()
	defer wg.Done()

	for {
		secret, err := v.login(ctx)
		if err != nil {
			log.Error("unable to authenticate to vault", zap.Error(err))
			v.setLoggedIn(false)
			select {
			case <-stop:
				log.Info("stopping renew token go routine")
				return
			case <-time.After(v.RetryInterval):
			}
			continue
		}

		v.setLoggedIn(true)
		stopped, err := v.manageTokenLifecycle(ctx, secret, stop)
		if err != nil {
			log.Error("unable to start managing token lifecycle", zap.Error(err))
		}
		if stopped {
			v.setLoggedIn(false)
			log.Info("stopping renew token go routine")
			return
		}
	}
}

// manageTokenLifecycle watches the token until it can no longer be renewed or
// stop is closed. Only fatal errors are returned, a false result means the
// caller should login again.
func (v *Vault) manageTokenLifecycle(ctx context.Context, token *vault.Secret, stop <-chan struct{}) (bool, error) {
	log := zap.L()

	if token.Auth != nil && !token.Auth.Renewable {
		log.Info("token is not configured to be renewable, waiting for stop before revoking")
		<-stop
		v.revoke(ctx)
		return true, nil
	}

	watcher, err := v.client.NewLifetimeWatcher(&vault.LifetimeWatcherInput{
		Secret:    token,
		Increment: token.LeaseDuration / 2,
	})
	if err != nil {
		return false, fmt.Errorf("unable to initialize new lifetime watcher for renewing auth token: %w", err)
	}

	go watcher.Start()
	defer watcher.Stop()

	for {
		select {
		case <-stop:
			v.revoke(ctx)
			return true, nil
		// DoneCh returns if renewal fails, or if the remaining lease
		// duration is under a built-in threshold and renewing is not
		// extending it.
		case err := <-watcher.DoneCh():
			if err != nil {
				log.Error("failed to renew token, re-attempting login", zap.Error(err))
				return false, nil
			}
			log.Info("token can no longer be renewed, re-attempting login")
			return false, nil
		case renewal := <-watcher.RenewCh():
			v.client.SetToken(renewal.Secret.Auth.ClientToken)
			log.Debug("successfully renewed vault token", zap.Time("renewed_at", renewal.RenewedAt))
		}
	}
}

func (v *Vault) revoke(ctx context.Context) {
	zap.L().Info("revoking token before app shutdown")
	if err := v.client.Auth().Token().RevokeSelfWithContext(ctx, v.client.Token()); err != nil {
		zap.L().Error("unable to revoke token", zap.Error(err))
	}
}
