package opener

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"strings"

	"collectra/internal/ports"
)

// CompoundOpener routes by path shape: s3:// URLs go to object storage,
// anything else is a local file path.
type CompoundOpener struct {
	Local *LocalOpener
	S3    *S3Opener
}

func NewCompoundOpener(local *LocalOpener, s3Op *S3Opener) *CompoundOpener {
	return &CompoundOpener{Local: local, S3: s3Op}
}

func (c *CompoundOpener) Open(ctx context.Context, filePath string) (io.ReadCloser, ports.Meta, error) {
	fp := strings.TrimSpace(filePath)

	if strings.HasPrefix(fp, "s3://") {
		if c.S3 == nil {
			return nil, ports.Meta{}, errors.New("s3 opener not configured")
		}
		bkt, key, err := parseS3URL(fp)
		if err != nil {
			return nil, ports.Meta{}, err
		}
		return c.S3.Open(ctx, bkt, key)
	}

	if c.Local == nil {
		return nil, ports.Meta{}, errors.New("local opener not configured")
	}
	return c.Local.Open(ctx, fp)
}

func parseS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" {
		return "", "", errors.New("scheme must be s3")
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	key = path.Clean(key)
	if bucket == "" || key == "" || key == "." || key == "/" {
		return "", "", errors.New("empty bucket or key")
	}
	return bucket, key, nil
}
