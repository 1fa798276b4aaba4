package http_test

import (
	"encoding/base64"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frankli0324/proxyget/internal/http"
)

func TestEncodeCredentials(t *testing.T) {
	require.Equal(t, "", http.EncodeCredentials(nil))
	require.Equal(t, "YQ==", http.EncodeCredentials([]byte("a")))
	require.Equal(t, "YWI=", http.EncodeCredentials([]byte("ab")))
	require.Equal(t, "YWJj", http.EncodeCredentials([]byte("abc")))
	require.Equal(t, "YWxpY2U6c2VjcmV0", http.EncodeCredentials([]byte("alice:secret")))
	require.Equal(t, "Basic YWxpY2U6c2VjcmV0", http.BasicAuth("alice", "secret"))
}

func TestEncodeCredentialsRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for n := 0; n < 64; n++ {
		b := make([]byte, n)
		rnd.Read(b)

		enc := http.EncodeCredentials(b)
		require.Len(t, enc, 4*((n+2)/3))

		dec, err := base64.StdEncoding.DecodeString(enc)
		require.NoError(t, err)
		require.Equal(t, b, dec)
	}
}
