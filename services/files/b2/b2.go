// Package b2files stores FILE resources in a Backblaze B2 bucket.
package b2files

import (
	"context"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kurin/blazer/b2"
	"github.com/pkg/errors"

	"github.com/trezcool/classpoll/core"
)

var newID = uuid.NewString // mockable

type Store struct {
	bucket *b2.Bucket
}

func Open(ctx context.Context, conf core.B2Config) (*Store, error) {
	if conf.AccountID == "" || conf.AppKey == "" || conf.Bucket == "" {
		return nil, errors.New("b2: account id, app key and bucket are required")
	}
	client, err := b2.NewClient(ctx, conf.AccountID, conf.AppKey)
	if err != nil {
		return nil, errors.Wrap(err, "b2: creating client")
	}
	bucket, err := client.Bucket(ctx, conf.Bucket)
	if err != nil {
		return nil, errors.Wrapf(err, "b2: opening bucket %s", conf.Bucket)
	}
	return &Store{bucket: bucket}, nil
}

// Upload writes r under a fresh key derived from filename and returns its public URL.
func (s *Store) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	key := objectKey(filename)
	obj := s.bucket.Object(key)

	attrs := &b2.Attrs{ContentType: contentType(filename)}
	w := obj.NewWriter(ctx, b2.WithAttrsOption(attrs))
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errors.Wrapf(err, "b2: writing %s", key)
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrapf(err, "b2: closing %s", key)
	}
	return obj.URL(), nil
}

// objectKey keeps the base name readable and prefixes it so uploads never collide.
func objectKey(filename string) string {
	base := strings.Join(strings.Fields(filepath.Base(filename)), "-")
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "file"
	}
	return path.Join("resources", newID(), base)
}

func contentType(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
