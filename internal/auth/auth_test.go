package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	mgr := NewManager("test-secret", 12*time.Hour)

	token, err := mgr.IssueDoctorToken("doctor@bepeace.in")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	email, err := mgr.VerifyDoctorToken(token)
	require.NoError(t, err)
	assert.Equal(t, "doctor@bepeace.in", email)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).IssueDoctorToken("doctor@bepeace.in")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).VerifyDoctorToken(token)
	assert.Error(t, err)
}

func TestVerify_Expired(t *testing.T) {
	token, err := NewManager("test-secret", -time.Minute).IssueDoctorToken("doctor@bepeace.in")
	require.NoError(t, err)

	_, err = NewManager("test-secret", -time.Minute).VerifyDoctorToken(token)
	assert.Error(t, err)
}

func TestVerify_MissingRole(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)

	bare := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "doctor@bepeace.in",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := bare.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = mgr.VerifyDoctorToken(signed)
	assert.Error(t, err)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := NewManager("test-secret", time.Hour).VerifyDoctorToken("not-a-token")
	assert.Error(t, err)
}
