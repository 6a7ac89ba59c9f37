package source

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURI is returned for locations ParseURI cannot interpret.
var ErrInvalidURI = errors.New("invalid source uri")

// Scheme identifies the store backing a Location.
type Scheme string

const (
	SchemeFile  Scheme = "file"
	SchemeS3    Scheme = "s3"
	SchemeMinio Scheme = "minio"
)

// Location is a parsed source URI.
type Location struct {
	Scheme Scheme
	// Bucket is empty for SchemeFile.
	Bucket string
	// Key is the object key, or the file path for SchemeFile.
	Key string
}

func (l Location) String() string {
	if l.Scheme == SchemeFile {
		return l.Key
	}
	return fmt.Sprintf("%s://%s/%s", l.Scheme, l.Bucket, l.Key)
}

// ParseURI parses "s3://bucket/key", "minio://bucket/key", "file://path"
// or a bare file path.
func ParseURI(uri string) (Location, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Location{}, fmt.Errorf("%w: empty", ErrInvalidURI)
	}

	if !strings.Contains(uri, "://") {
		return Location{Scheme: SchemeFile, Key: uri}, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}

	switch Scheme(strings.ToLower(u.Scheme)) {
	case SchemeFile:
		p := u.Path
		if u.Host != "" {
			p = u.Host + p
		}
		if p == "" {
			return Location{}, fmt.Errorf("%w: %q has no path", ErrInvalidURI, uri)
		}
		return Location{Scheme: SchemeFile, Key: p}, nil
	case SchemeS3, SchemeMinio:
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Location{}, fmt.Errorf("%w: %q needs bucket and key", ErrInvalidURI, uri)
		}
		return Location{Scheme: Scheme(strings.ToLower(u.Scheme)), Bucket: u.Host, Key: key}, nil
	default:
		return Location{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURI, u.Scheme)
	}
}
