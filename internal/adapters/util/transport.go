package util

import (
	"net/http"

	"github.com/rs/zerolog"
)

// LoggingTransport is an http.RoundTripper that logs outbound requests and
// their outcomes at debug level. Bodies are not logged; catalog pages are
// large and uninteresting.
type LoggingTransport struct {
	Base http.RoundTripper
	Log  zerolog.Logger
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if t.Log.GetLevel() > zerolog.DebugLevel {
		return base.RoundTrip(req)
	}

	t.Log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("outbound request")

	resp, err := base.RoundTrip(req)
	if err != nil {
		t.Log.Debug().Str("url", req.URL.String()).Err(err).Msg("outbound request failed")
		return resp, err
	}

	t.Log.Debug().
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Int64("content_length", resp.ContentLength).
		Msg("outbound response")

	return resp, nil
}
