package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// realmKey is one entry of the Keycloak realm certs document.
// Keycloak publishes both signing and encryption keys there.
type realmKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type realmKeySet struct {
	Keys []realmKey `json:"keys"`
}

var jwksClient = &http.Client{Timeout: 10 * time.Second}

// JWKS holds the RSA signing keys of the clinic realm, indexed by kid.
// Keys are fetched from the realm certs endpoint and refreshed in the
// background so Keycloak key rotation does not invalidate live sessions.
type JWKS struct {
	url    string
	mu     sync.RWMutex
	keys   map[string]*rsa.PublicKey
	ticker *time.Ticker
	done   chan struct{}
}

// NewJWKS fetches the realm keys from url and keeps them fresh, polling
// every refreshInterval. A non-positive interval falls back to 15 minutes.
// The initial fetch must succeed so the service never starts without a
// way to verify tokens.
func NewJWKS(url string, refreshInterval time.Duration) (*JWKS, error) {
	if refreshInterval <= 0 {
		refreshInterval = 15 * time.Minute
	}
	j := &JWKS{
		url:    url,
		keys:   map[string]*rsa.PublicKey{},
		ticker: time.NewTicker(refreshInterval),
		done:   make(chan struct{}),
	}
	if err := j.refresh(); err != nil {
		return nil, fmt.Errorf("initial JWKS fetch from %s failed: %w", url, err)
	}
	go func() {
		for {
			select {
			case <-j.ticker.C:
				_ = j.refresh()
			case <-j.done:
				return
			}
		}
	}()
	return j, nil
}

// Close stops the background refresh.
func (j *JWKS) Close() {
	close(j.done)
	j.ticker.Stop()
}

func (j *JWKS) refresh() error {
	resp, err := jwksClient.Get(j.url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var set realmKeySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return err
	}

	fresh := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || k.Use == "enc" {
			continue
		}
		pub, err := k.publicKey()
		if err != nil {
			return fmt.Errorf("bad realm key %q: %w", k.Kid, err)
		}
		fresh[k.Kid] = pub
	}

	j.mu.Lock()
	j.keys = fresh
	j.mu.Unlock()
	return nil
}

func (k realmKey) publicKey() (*rsa.PublicKey, error) {
	modulus, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	expBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	exponent := 0
	for _, b := range expBytes {
		exponent = exponent<<8 | int(b)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(modulus),
		E: exponent,
	}, nil
}

// Get returns the public key for kid. An unknown kid triggers one
// refetch before failing, so tokens signed right after a key rotation
// still verify.
func (j *JWKS) Get(kid string) (*rsa.PublicKey, error) {
	if pub := j.lookup(kid); pub != nil {
		return pub, nil
	}
	if err := j.refresh(); err != nil {
		return nil, err
	}
	if pub := j.lookup(kid); pub != nil {
		return pub, nil
	}
	return nil, errors.New("jwks: key not found")
}

func (j *JWKS) lookup(kid string) *rsa.PublicKey {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.keys[kid]
}
