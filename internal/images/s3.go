// Package images lists pre-rendered chart images from an S3-compatible
// bucket (DigitalOcean Spaces). Listing is best-effort: any failure degrades
// to a placeholder so a broken bucket never takes down a dashboard page.
package images

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	applog "treasurydash/internal/log"
)

// PlaceholderURL is served when the bucket is unreachable or empty.
const PlaceholderURL = "/static/chart-placeholder.svg"

// Image is one chart image available for a company.
type Image struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Lister returns the chart images for a company.
type Lister interface {
	ListChartImages(ctx context.Context, company string) []Image
}

// objectLister is the slice of the S3 API the client uses.
type objectLister interface {
	ListObjectsV2WithContext(ctx aws.Context, input *s3.ListObjectsV2Input, opts ...request.Option) (*s3.ListObjectsV2Output, error)
}

type Config struct {
	Bucket      string
	KeyPrefix   string
	Region      string
	EndpointURL string
	AccessKeyID string
	SecretKey   string
}

type Client struct {
	api     objectLister
	bucket  string
	prefix  string
	baseURL string
	logger  *applog.Logger
}

var _ Lister = (*Client)(nil)

// New creates a Spaces client. The endpoint is the regional one; object URLs
// use the virtual-host form https://<bucket>.<endpoint-host>/<key>.
func New(cfg Config, logger *applog.Logger) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("missing bucket name")
	}
	endpoint, err := url.Parse(cfg.EndpointURL)
	if err != nil || endpoint.Host == "" {
		return nil, fmt.Errorf("invalid endpoint URL %q", cfg.EndpointURL)
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Endpoint:    aws.String(cfg.EndpointURL),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	return &Client{
		api:     s3.New(sess),
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.KeyPrefix, "/"),
		baseURL: fmt.Sprintf("%s://%s.%s", endpoint.Scheme, cfg.Bucket, endpoint.Host),
		logger:  logger.WithComponent(applog.ComponentImages),
	}, nil
}

// ListChartImages returns the images under <prefix>/<company>/, sorted by
// object key. Errors are logged and reported as the placeholder.
func (c *Client) ListChartImages(ctx context.Context, company string) []Image {
	prefix := path.Join(c.prefix, company) + "/"

	var images []Image
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	}
	for {
		out, err := c.api.ListObjectsV2WithContext(ctx, input)
		if err != nil {
			c.logger.Warn("Chart image listing failed, serving placeholder",
				applog.FieldCompany, company,
				applog.FieldBucket, c.bucket,
				applog.FieldPrefix, prefix,
				"error", err)
			return Placeholder()
		}
		for _, obj := range out.Contents {
			key := aws.StringValue(obj.Key)
			if !isImageKey(key) {
				continue
			}
			images = append(images, Image{
				Name: path.Base(key),
				URL:  c.baseURL + "/" + key,
			})
		}
		if !aws.BoolValue(out.IsTruncated) {
			break
		}
		input.ContinuationToken = out.NextContinuationToken
	}

	if len(images) == 0 {
		return Placeholder()
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })
	return images
}

// Placeholder is the image set served when nothing else is available.
func Placeholder() []Image {
	return []Image{{Name: "placeholder", URL: PlaceholderURL}}
}

func isImageKey(key string) bool {
	switch strings.ToLower(path.Ext(key)) {
	case ".png", ".jpg", ".jpeg", ".svg", ".webp":
		return true
	}
	return false
}

// PlaceholderLister serves the placeholder for every company. Used when no
// bucket is configured.
type PlaceholderLister struct{}

func (PlaceholderLister) ListChartImages(context.Context, string) []Image {
	return Placeholder()
}
