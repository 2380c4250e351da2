package scraper

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func htmlResponder(body string) httpmock.Responder {
	resp := httpmock.NewStringResponse(200, body)
	resp.Header.Set("Content-Type", "text/html")
	return httpmock.ResponderFromResponse(resp)
}

func TestTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		responder httpmock.Responder
		want      string
		wantErr   error
	}{
		{
			name:      "ValidTitle",
			responder: htmlResponder("<html><head><title>  Test Title\n</title></head></html>"),
			want:      "Test Title",
		},
		{
			name:      "FirstTitleOnly",
			responder: htmlResponder("<title>One</title><svg><title>Two</title></svg>"),
			want:      "One",
		},
		{
			name:      "EmptyTitle",
			responder: htmlResponder("<html><head><title> </title></head></html>"),
			wantErr:   ErrNoTitle,
		},
		{
			name:      "NotFound",
			responder: httpmock.NewStringResponder(http.StatusNotFound, "nope"),
			wantErr:   ErrStatus,
		},
		{
			name:      "ServerError",
			responder: httpmock.NewStringResponder(http.StatusBadGateway, ""),
			wantErr:   ErrStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			transport := httpmock.NewMockTransport()
			transport.RegisterResponder("GET", "https://example.test/page", tt.responder)

			s := New(WithTransport(transport))
			got, err := s.Title(t.Context(), "https://example.test/page")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTitleSendsUserAgent(t *testing.T) {
	t.Parallel()

	var ua string
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://example.test/",
		func(req *http.Request) (*http.Response, error) {
			ua = req.Header.Get("User-Agent")
			return httpmock.NewStringResponse(200, "<title>ok</title>"), nil
		})

	_, err := New(WithTransport(transport)).Title(t.Context(), "https://example.test/")
	require.NoError(t, err)
	assert.Equal(t, "StupidBookmarks/1.0", ua)

	_, err = New(WithTransport(transport), WithUserAgent("custom/2")).Title(t.Context(), "https://example.test/")
	require.NoError(t, err)
	assert.Equal(t, "custom/2", ua)
}

func TestTitleUnsupportedScheme(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	s := New(WithTransport(transport))

	_, err := s.Title(t.Context(), "ftp://files.example.test/")
	require.ErrorIs(t, err, ErrUnsupportedScheme)
	assert.Zero(t, transport.GetTotalCallCount())
}

func TestTitleNetworkError(t *testing.T) {
	t.Parallel()

	// no responder registered
	transport := httpmock.NewMockTransport()
	_, err := New(WithTransport(transport)).Title(t.Context(), "https://down.example.test/")
	require.Error(t, err)
}

func TestTitleRateLimited(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://example.test/", htmlResponder("<title>ok</title>"))

	s := New(WithTransport(transport), WithRateLimit(0.01))

	got, err := s.Title(t.Context(), "https://example.test/")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	_, err = s.Title(ctx, "https://example.test/")
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}
