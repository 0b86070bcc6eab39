package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// GenerateTestKeyPair generates an RSA key pair for testing JWT tokens
func GenerateTestKeyPair(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}
	return privateKey, &privateKey.PublicKey
}

// GenerateTestJWT creates a signed token carrying the clinician username and
// realm roles the middleware expects.
func GenerateTestJWT(t *testing.T, privateKey *rsa.PrivateKey, userID, username string, roles []string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":                userID,
		"iss":                "https://test-keycloak.com/realms/test",
		"exp":                time.Now().Add(1 * time.Hour).Unix(),
		"iat":                time.Now().Unix(),
		"preferred_username": username,
		"realm_access": map[string]interface{}{
			"roles": interfaceSlice(roles),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-key-id"

	tokenString, err := token.SignedString(privateKey)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	return tokenString
}

// GenerateClinicianToken creates a CLINICIAN token for testing
func GenerateClinicianToken(t *testing.T, privateKey *rsa.PrivateKey, username string) string {
	t.Helper()
	return GenerateTestJWT(t, privateKey, "clinician-123", username, []string{"CLINICIAN"})
}

// GenerateAdminToken creates a CLINIC_ADMIN token for testing
func GenerateAdminToken(t *testing.T, privateKey *rsa.PrivateKey, username string) string {
	t.Helper()
	return GenerateTestJWT(t, privateKey, "admin-123", username, []string{"CLINIC_ADMIN"})
}

// GenerateReceptionistToken creates a RECEPTIONIST token for testing
func GenerateReceptionistToken(t *testing.T, privateKey *rsa.PrivateKey, username string) string {
	t.Helper()
	return GenerateTestJWT(t, privateKey, "receptionist-123", username, []string{"RECEPTIONIST"})
}

// interfaceSlice converts []string to []interface{} for JWT claims
func interfaceSlice(strings []string) []interface{} {
	result := make([]interface{}, len(strings))
	for i, s := range strings {
		result[i] = s
	}
	return result
}
