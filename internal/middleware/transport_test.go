package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestWithAuth_SetsBearer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("Authorization")))
	}))
	defer ts.Close()

	client := &http.Client{Transport: Chain(nil, WithAuth(staticToken("tok123")))}
	resp, err := client.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	buf := make([]byte, 64)
	n, _ := resp.Body.Read(buf)
	assert.Equal(t, "Bearer tok123", string(buf[:n]))
}

func TestWithAuth_NoTokenNoHeader_AndExplicitHeaderKept(t *testing.T) {
	var got []string
	base := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		got = append(got, r.Header.Get("Authorization"))
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	})

	rt := WithAuth(staticToken(""))(base)
	req := httptest.NewRequest(http.MethodGet, "http://x/api/user", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)

	rt = WithAuth(staticToken("from-store"))(base)
	req = httptest.NewRequest(http.MethodGet, "http://x/api/user", nil)
	req.Header.Set("Authorization", "Bearer explicit")
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Bearer explicit"}, got)
}

func TestWithRequestID(t *testing.T) {
	var ids []string
	base := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		ids = append(ids, r.Header.Get(HeaderRequestID))
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})
	rt := WithRequestID(base)

	orig := httptest.NewRequest(http.MethodGet, "http://x/", nil)
	_, _ = rt.RoundTrip(orig)
	_, _ = rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://x/", nil))
	preset := httptest.NewRequest(http.MethodGet, "http://x/", nil)
	preset.Header.Set(HeaderRequestID, "fixed")
	_, _ = rt.RoundTrip(preset)

	require.Len(t, ids, 3)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
	assert.Equal(t, "fixed", ids[2])
	assert.Empty(t, orig.Header.Get(HeaderRequestID), "caller request must not be mutated")
}

func TestWithLogging_LogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core).Sugar())
	defer SetLogger(zap.NewNop().Sugar())

	boom := errors.New("connection refused")
	rt := WithLogging(RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path == "/fail" {
			return nil, boom
		}
		return &http.Response{StatusCode: http.StatusTeapot, Body: http.NoBody}, nil
	}))

	resp, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://x/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	_, err = rt.RoundTrip(httptest.NewRequest(http.MethodPost, "http://x/fail", nil))
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 1, logs.FilterMessage("request").Len())
	failed := logs.FilterMessage("request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.WarnLevel, failed[0].Level)
	assert.Equal(t, "POST", failed[0].ContextMap()["method"])
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) func(http.RoundTripper) http.RoundTripper {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}
	base := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		order = append(order, "base")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})
	_, err := Chain(base, mw("a"), mw("b")).RoundTrip(httptest.NewRequest(http.MethodGet, "http://x/", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "base"}, order)
}
