package s3fs

import (
	"fmt"
	"strings"
)

// DefaultRegion is used when the builder is given no region.
const DefaultRegion = "us-east-1"

// EndpointStyle selects how the bucket is addressed on the endpoint.
type EndpointStyle string

const (
	// EndpointStyleSubdomain addresses buckets as bucket.endpoint
	EndpointStyleSubdomain EndpointStyle = "subdomain"
	// EndpointStylePath addresses buckets as endpoint/bucket
	EndpointStylePath EndpointStyle = "path"
)

// ParseEndpointStyle accepts "subdomain" and "path"; empty yields subdomain.
func ParseEndpointStyle(style string) (EndpointStyle, error) {
	switch EndpointStyle(strings.ToLower(strings.TrimSpace(style))) {
	case "", EndpointStyleSubdomain:
		return EndpointStyleSubdomain, nil
	case EndpointStylePath:
		return EndpointStylePath, nil
	default:
		return "", fmt.Errorf("s3fs: unknown endpoint style '%s'", style)
	}
}

// Location identifies where objects live. It is immutable once built.
type Location struct {
	endpoint string
	bucket   string
	region   string
	style    EndpointStyle
}

func (l Location) Endpoint() string {
	return l.endpoint
}

func (l Location) Bucket() string {
	return l.bucket
}

func (l Location) Region() string {
	return l.region
}

func (l Location) EndpointStyle() EndpointStyle {
	return l.style
}

// PathStyle reports whether buckets are addressed in the URL path.
func (l Location) PathStyle() bool {
	return l.style == EndpointStylePath
}

// HasBucket reports whether a bucket was configured.
// Without one every operation fails before reaching the transport.
func (l Location) HasBucket() bool {
	return l.bucket != ""
}

func (l Location) String() string {
	return fmt.Sprintf("%s [bucket=%s region=%s style=%s]", l.endpoint, l.bucket, l.region, l.style)
}

// LocationBuilder assembles a Location step by step.
type LocationBuilder struct {
	location Location
}

func NewLocationBuilder(endpoint string) *LocationBuilder {
	return &LocationBuilder{
		location: Location{
			endpoint: endpoint,
			region:   DefaultRegion,
			style:    EndpointStyleSubdomain,
		},
	}
}

func (b *LocationBuilder) WithBucket(bucket string) *LocationBuilder {
	b.location.bucket = bucket
	return b
}

// WithRegion overrides the region; an empty value keeps the default.
func (b *LocationBuilder) WithRegion(region string) *LocationBuilder {
	if region != "" {
		b.location.region = region
	}
	return b
}

func (b *LocationBuilder) WithEndpointStyle(style EndpointStyle) *LocationBuilder {
	if style != "" {
		b.location.style = style
	}
	return b
}

// Build returns a copy, so later builder calls never alter it.
func (b *LocationBuilder) Build() Location {
	return b.location
}

// Credentials is an immutable access key and secret pair.
type Credentials struct {
	key    string
	secret string
}

func NewCredentials(key, secret string) Credentials {
	return Credentials{
		key:    key,
		secret: secret,
	}
}

func (c Credentials) Key() string {
	return c.key
}

func (c Credentials) Secret() string {
	return c.secret
}

// String never reveals the secret.
func (c Credentials) String() string {
	return fmt.Sprintf("%s:****", c.key)
}
