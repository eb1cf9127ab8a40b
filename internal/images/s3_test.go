package images

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"

	applog "treasurydash/internal/log"
)

type fakeLister struct {
	pages []*s3.ListObjectsV2Output
	err   error
	calls int
}

func (f *fakeLister) ListObjectsV2WithContext(_ aws.Context, input *s3.ListObjectsV2Input, _ ...request.Option) (*s3.ListObjectsV2Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := f.pages[f.calls]
	f.calls++
	return out, nil
}

func testClient(api objectLister) *Client {
	logger := applog.New(applog.Config{Level: slog.LevelError})
	return &Client{
		api:     api,
		bucket:  "treasury-charts",
		prefix:  "charts",
		baseURL: "https://treasury-charts.nyc3.digitaloceanspaces.com",
		logger:  logger.WithComponent(applog.ComponentImages),
	}
}

func TestListChartImages(t *testing.T) {
	fake := &fakeLister{pages: []*s3.ListObjectsV2Output{{
		Contents: []*s3.Object{
			{Key: aws.String("charts/h100/nav.png")},
			{Key: aws.String("charts/h100/mnav.svg")},
			{Key: aws.String("charts/h100/notes.txt")},
		},
		IsTruncated: aws.Bool(false),
	}}}

	images := testClient(fake).ListChartImages(context.Background(), "h100")
	if len(images) != 2 {
		t.Fatalf("image count: got %d, want 2", len(images))
	}
	// Sorted by name; the text file is excluded.
	if images[0].Name != "mnav.svg" || images[1].Name != "nav.png" {
		t.Fatalf("names: %v", images)
	}
	if images[1].URL != "https://treasury-charts.nyc3.digitaloceanspaces.com/charts/h100/nav.png" {
		t.Fatalf("url: got %q", images[1].URL)
	}
}

func TestListChartImages_Paginates(t *testing.T) {
	fake := &fakeLister{pages: []*s3.ListObjectsV2Output{
		{
			Contents:              []*s3.Object{{Key: aws.String("charts/blgv/a.png")}},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("next"),
		},
		{
			Contents:    []*s3.Object{{Key: aws.String("charts/blgv/b.png")}},
			IsTruncated: aws.Bool(false),
		},
	}}

	images := testClient(fake).ListChartImages(context.Background(), "blgv")
	if len(images) != 2 {
		t.Fatalf("image count: got %d, want 2", len(images))
	}
	if fake.calls != 2 {
		t.Fatalf("api calls: got %d, want 2", fake.calls)
	}
}

func TestListChartImages_ErrorYieldsPlaceholder(t *testing.T) {
	fake := &fakeLister{err: errors.New("bucket unreachable")}
	images := testClient(fake).ListChartImages(context.Background(), "lqwd")
	if len(images) != 1 || images[0].URL != PlaceholderURL {
		t.Fatalf("want placeholder, got %v", images)
	}
}

func TestListChartImages_EmptyYieldsPlaceholder(t *testing.T) {
	fake := &fakeLister{pages: []*s3.ListObjectsV2Output{{IsTruncated: aws.Bool(false)}}}
	images := testClient(fake).ListChartImages(context.Background(), "locate")
	if len(images) != 1 || images[0].URL != PlaceholderURL {
		t.Fatalf("want placeholder, got %v", images)
	}
}

func TestNew_Validation(t *testing.T) {
	logger := applog.New(applog.Config{Level: slog.LevelError})
	if _, err := New(Config{}, logger); err == nil {
		t.Fatal("missing bucket should be rejected")
	}
	if _, err := New(Config{Bucket: "b", EndpointURL: "://bad"}, logger); err == nil {
		t.Fatal("bad endpoint should be rejected")
	}
}
