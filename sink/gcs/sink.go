// Package gcs provides the gs:// sink, which writes Plans to Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	log "github.com/sirupsen/logrus"
	"go.gazette.dev/rackplan/sink"
	"google.golang.org/api/option"
)

// SinkQueryArgs contains fields that are parsed from the query arguments
// of a gs:// sink URL.
type SinkQueryArgs struct {
	// CredentialsFile is a path to a service account JSON key. If empty,
	// application default credentials are used.
	CredentialsFile string
	// Endpoint overrides the storage API endpoint, eg for an emulator.
	Endpoint string
}

type store struct {
	bucket string
	client *storage.Client
}

// New creates a new GCS Sink from the provided URL.
func New(ep *url.URL) (sink.Sink, error) {
	var args SinkQueryArgs
	if err := sink.ParseQueryArgs(ep, &args); err != nil {
		return nil, err
	}
	var bucket, object = ep.Host, strings.TrimPrefix(ep.Path, "/")

	if bucket == "" || object == "" {
		return nil, fmt.Errorf("gs:// sink requires a bucket and object (%s)", ep)
	}

	var client, err = storage.NewClient(context.Background(), clientOptions(args)...)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"bucket":   bucket,
		"object":   object,
		"endpoint": args.Endpoint,
	}).Info("constructed new GCS client")

	return sink.NewBlobSink(&store{bucket: bucket, client: client}, object), nil
}

func clientOptions(args SinkQueryArgs) []option.ClientOption {
	var opts = []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}

	if args.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(args.CredentialsFile))
	}
	if args.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(args.Endpoint), option.WithoutAuthentication())
	}
	return opts
}

func (s *store) Provider() string { return "gcs" }

func (s *store) Close() error { return s.client.Close() }

func (s *store) Put(ctx context.Context, path string, content io.ReaderAt, contentLength int64, contentEncoding string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wc = s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)

	if contentEncoding != "" {
		wc.ContentEncoding = contentEncoding
	}
	// io.Copy only needs io.Reader, so we use io.NewSectionReader to adapt io.ReaderAt
	var _, err = io.Copy(wc, io.NewSectionReader(content, 0, contentLength))
	if err != nil {
		return err
	}
	return wc.Close()
}
