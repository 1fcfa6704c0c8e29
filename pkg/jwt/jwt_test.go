package jwt_test

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/barratec/barra-api/pkg/jwt"
)

const secret = "secreto-de-test"

func TestGenerateYParse_RoundTrip(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-1", "Barra Uno", "encargado", "barra-api", 60)
	require.NoError(t, err)

	userID, name, role, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "Barra Uno", name)
	assert.Equal(t, "encargado", role)
}

func TestParse_SecretoIncorrectoFalla(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-1", "Barra Uno", "admin", "barra-api", 60)
	require.NoError(t, err)

	_, _, _, err = pkgjwt.Parse("otro-secreto", tok)
	require.Error(t, err)
}

func TestParse_TokenExpiradoFalla(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-1", "Barra Uno", "admin", "barra-api", -1)
	require.NoError(t, err)

	_, _, _, err = pkgjwt.Parse(secret, tok)
	require.Error(t, err)
}

func TestParse_RechazaAlgoritmoNoHMAC(t *testing.T) {
	// Un token firmado con "none" no debe pasar por mucho que el payload sea válido.
	token := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.MapClaims{"sub": "user-1"})
	signed, err := token.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, _, _, err = pkgjwt.Parse(secret, signed)
	require.Error(t, err)
}
