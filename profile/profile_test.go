package profile_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/FactomWyomingEntity/prosper-stake/profile"
	"github.com/stretchr/testify/require"
)

func TestMux(t *testing.T) {
	require := require.New(t)
	srv := httptest.NewServer(Mux())
	defer srv.Close()

	for _, path := range []string{"/metrics", "/debug/pprof/"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(err)
		resp.Body.Close()
		require.Equal(http.StatusOK, resp.StatusCode, path)
	}
}
