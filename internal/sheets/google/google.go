// Package google implements the sheets ports against the Google Sheets v4
// API using API-key authentication. Every read requests unformatted values
// so numeric cells arrive as numbers and dates as serial days.
package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	ports "treasurydash/internal/sheets"

	"treasurydash/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	valueRenderOption = "UNFORMATTED_VALUE"
	majorDimension    = "ROWS"
)

type Client struct {
	svc *gsheet.Service
}

// Ensure interface conformance
var _ ports.RangeReader = (*Client)(nil)

// New creates a read-only Sheets client authenticated with an API key.
// API keys only grant access to spreadsheets shared as "anyone with the
// link", which is all the public treasury trackers need.
func New(ctx context.Context, apiKey string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("missing Google API key")
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithAPIKey(apiKey),
		goption.WithHTTPClient(newHTTPClientWithPooling()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// NewFromEnv creates a client from GOOGLE_API_KEY.
func NewFromEnv(ctx context.Context) (*Client, error) {
	key := os.Getenv("GOOGLE_API_KEY")
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("missing GOOGLE_API_KEY")
	}
	return New(ctx, key)
}

// newHTTPClientWithPooling creates an HTTP client tuned for the Sheets API
// with connection pooling and per-phase timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

func (c *Client) ReadRange(ctx context.Context, spreadsheetID, a1Range string) (core.RangeValues, error) {
	ranges, err := c.BatchRead(ctx, spreadsheetID, []string{a1Range})
	if err != nil {
		return core.RangeValues{}, err
	}
	if len(ranges) == 0 {
		return core.RangeValues{Range: a1Range, MajorDimension: majorDimension}, nil
	}
	return ranges[0], nil
}

// BatchRead fetches all requested ranges with a single values:batchGet call.
func (c *Client) BatchRead(ctx context.Context, spreadsheetID string, a1Ranges []string) ([]core.RangeValues, error) {
	if len(a1Ranges) == 0 {
		return nil, nil
	}
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	resp, err := c.svc.Spreadsheets.Values.
		BatchGet(spreadsheetID).
		Ranges(a1Ranges...).
		ValueRenderOption(valueRenderOption).
		MajorDimension(majorDimension).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("batch get %s: %w", spreadsheetID, err)
	}

	out := make([]core.RangeValues, len(a1Ranges))
	for i := range a1Ranges {
		out[i] = core.RangeValues{Range: a1Ranges[i], MajorDimension: majorDimension}
		if i < len(resp.ValueRanges) && resp.ValueRanges[i] != nil {
			vr := resp.ValueRanges[i]
			if vr.Range != "" {
				out[i].Range = vr.Range
			}
			out[i].Values = vr.Values
		}
	}
	return out, nil
}
