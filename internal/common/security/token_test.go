package security

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateOpaqueToken(t *testing.T) {
	token, err := GenerateOpaqueToken()
	require.NoError(t, err)

	raw, err := hex.DecodeString(token)
	require.NoError(t, err)
	require.Len(t, raw, opaqueTokenBytes)

	other, err := GenerateOpaqueToken()
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}
