package sink

import (
	"bytes"
	"context"
	"io"

	"github.com/pkg/errors"
	"go.gazette.dev/rackplan/codecs"
	"go.gazette.dev/rackplan/placement"
	"go.gazette.dev/rackplan/planfmt"
)

// BlobStore is a cloud or local storage system of blobs, to which encoded
// Plans are written.
type BlobStore interface {
	// Provider returns the name of the storage backend (e.g., "s3", "gcs", "azure", "fs").
	Provider() string
	// Put durably writes content to the store at the given path.
	// contentEncoding is used to set appropriate headers (e.g., "gzip" for compressed content).
	Put(ctx context.Context, path string, content io.ReaderAt, contentLength int64, contentEncoding string) error
}

// NewBlobSink returns a Sink which encodes Plans and Puts them to |path|
// of the BlobStore. The Plan format and compression codec are chosen by
// extensions of |path|: "plan.yaml.gz" is gzip'd YAML, and "plan.json"
// is uncompressed JSON.
func NewBlobSink(store BlobStore, path string) Sink {
	return &blobSink{store: store, path: path}
}

type blobSink struct {
	store BlobStore
	path  string
}

func (s *blobSink) Provider() string { return s.store.Provider() }

// Close closes the BlobStore, if it's an io.Closer.
func (s *blobSink) Close() error {
	if c, ok := s.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *blobSink) Write(ctx context.Context, plan *placement.Plan) error {
	var content, codec, err = EncodeBlob(plan, s.path)
	if err != nil {
		return err
	}
	blobPutBytes.WithLabelValues(s.store.Provider(), codec.String()).Observe(float64(len(content)))

	return s.store.Put(ctx, s.path, bytes.NewReader(content), int64(len(content)), codec.ContentEncoding())
}

// EncodeBlob encodes |plan| in the format and compression codec implied by |path|.
func EncodeBlob(plan *placement.Plan, path string) ([]byte, codecs.Codec, error) {
	var codec, _ = codecs.CodecForPath(path)
	var buf bytes.Buffer

	var w, err = codecs.NewCodecWriter(&buf, codec)
	if err != nil {
		return nil, codec, err
	} else if err = planfmt.Encode(w, plan, planfmt.FormatForPath(path)); err != nil {
		return nil, codec, err
	} else if err = w.Close(); err != nil {
		return nil, codec, errors.WithMessage(err, "closing compressor")
	}
	return buf.Bytes(), codec, nil
}
