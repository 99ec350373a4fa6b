package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-alerts/pkg/jwt"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := jwt.Generate("s3cr3t", "u1", "venue-1", "manager", "stock-alerts", 5)
	require.NoError(t, err)

	claims, err := jwt.Parse("s3cr3t", tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "venue-1", claims.VenueID)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, "stock-alerts", claims.Issuer)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := jwt.Generate("s3cr3t", "u1", "venue-1", "admin", "", 5)
	require.NoError(t, err)

	_, err = jwt.Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := jwt.Generate("s3cr3t", "u1", "venue-1", "admin", "", -1)
	require.NoError(t, err)

	_, err = jwt.Parse("s3cr3t", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "u1", "venue-1", "admin", "", 5)
	assert.Error(t, err)
}
