package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func jwksDocument(t *testing.T, kid string, pub *rsa.PublicKey) []byte {
	t.Helper()
	doc := realmKeySet{
		Keys: []realmKey{
			{
				Kty: "RSA",
				Kid: kid,
				Use: "sig",
				Alg: "RS256",
				N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			},
			// Keycloak also publishes an encryption key, which must be skipped
			{
				Kty: "RSA",
				Kid: kid + "-enc",
				Use: "enc",
				Alg: "RSA-OAEP",
				N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			},
		},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal JWKS document: %v", err)
	}
	return raw
}

// TestJWKSGet tests key fetching from a realm certs endpoint
func TestJWKSGet(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(jwksDocument(t, "clinic-signing-key", &key.PublicKey))
	}))
	defer server.Close()

	jwks, err := NewJWKS(server.URL, time.Hour)
	if err != nil {
		t.Fatalf("NewJWKS failed: %v", err)
	}
	defer jwks.Close()

	pub, err := jwks.Get("clinic-signing-key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if pub.N.Cmp(key.PublicKey.N) != 0 || pub.E != key.PublicKey.E {
		t.Error("Fetched key does not match the published signing key")
	}

	if _, err := jwks.Get("clinic-signing-key-enc"); err == nil {
		t.Error("Expected encryption keys to be excluded from the signing set")
	}

	if _, err := jwks.Get("no-such-kid"); err == nil {
		t.Error("Expected an error for an unknown kid")
	}
}

// TestJWKSRotation tests that an unknown kid triggers a refetch
func TestJWKSRotation(t *testing.T) {
	oldKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}
	newKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}

	kid := "rotation-old"
	current := oldKey
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(jwksDocument(t, kid, &current.PublicKey))
	}))
	defer server.Close()

	jwks, err := NewJWKS(server.URL, time.Hour)
	if err != nil {
		t.Fatalf("NewJWKS failed: %v", err)
	}
	defer jwks.Close()

	// Rotate the realm key behind the endpoint
	kid = "rotation-new"
	current = newKey

	pub, err := jwks.Get("rotation-new")
	if err != nil {
		t.Fatalf("Expected a refetch to find the rotated key, got: %v", err)
	}
	if pub.N.Cmp(newKey.PublicKey.N) != 0 {
		t.Error("Fetched key does not match the rotated signing key")
	}
}

// TestNewJWKSUnreachableEndpoint tests that startup fails without keys
func TestNewJWKSUnreachableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, err := NewJWKS(server.URL, time.Hour); err == nil {
		t.Error("Expected NewJWKS to fail when the certs endpoint is unavailable")
	}
}
