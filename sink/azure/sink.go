// Package azure provides the azure:// sink, which writes Plans to Azure Blob
// Storage using Shared Key authentication. The storage account and key are
// read from AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY, and sink URLs take the
// form azure://<container>/<blob path>.
package azure

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/Azure/azure-pipeline-go/pipeline"
	"github.com/Azure/azure-storage-blob-go/azblob"
	log "github.com/sirupsen/logrus"
	"go.gazette.dev/rackplan/sink"
)

// SinkQueryArgs contains fields that are parsed from the query arguments
// of an azure:// sink URL.
type SinkQueryArgs struct {
	// BlobDomain is the domain of the storage account. By default, this is
	// the value of AZURE_BLOB_DOMAIN, or blob.core.windows.net.
	BlobDomain string
}

type store struct {
	storageAccount string // Storage accounts in Azure are the equivalent to a "bucket" in S3
	blobDomain     string // The domain of the blob storage account (e.g. blob.core.windows.net)
	container      string // In azure, blobs are stored inside of containers, which live inside accounts
	pipeline       pipeline.Pipeline
}

// New creates a new Azure Sink from the provided URL.
func New(ep *url.URL) (sink.Sink, error) {
	var args SinkQueryArgs
	if err := sink.ParseQueryArgs(ep, &args); err != nil {
		return nil, err
	}
	var container, blob = ep.Host, strings.TrimPrefix(ep.Path, "/")

	if container == "" || blob == "" {
		return nil, fmt.Errorf("azure:// sink requires a container and blob (%s)", ep)
	}

	var storageAccount = os.Getenv("AZURE_ACCOUNT_NAME")
	var accountKey = os.Getenv("AZURE_ACCOUNT_KEY")

	if storageAccount == "" || accountKey == "" {
		return nil, fmt.Errorf("AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY must be set for azure:// URLs")
	}

	var blobDomain = args.BlobDomain
	if blobDomain == "" {
		blobDomain = os.Getenv("AZURE_BLOB_DOMAIN")
	}
	if blobDomain == "" {
		blobDomain = "blob.core.windows.net"
	}

	credentials, err := azblob.NewSharedKeyCredential(storageAccount, accountKey)
	if err != nil {
		return nil, err
	}

	var s = &store{
		storageAccount: storageAccount,
		blobDomain:     blobDomain,
		container:      container,
		pipeline:       azblob.NewPipeline(credentials, azblob.PipelineOptions{}),
	}

	log.WithFields(log.Fields{
		"storageAccount": storageAccount,
		"blobDomain":     blobDomain,
		"container":      container,
		"blob":           blob,
	}).Info("constructed new Azure Shared Key storage client")

	return sink.NewBlobSink(s, blob), nil
}

func (s *store) Provider() string { return "azure" }

func (s *store) Put(ctx context.Context, path string, content io.ReaderAt, contentLength int64, contentEncoding string) error {
	var blobURL, err = s.buildBlobURL(path)
	if err != nil {
		return err
	}
	var headers = azblob.BlobHTTPHeaders{}
	if contentEncoding != "" {
		headers.ContentEncoding = contentEncoding
	}
	// Azure SDK requires io.ReadSeeker, so we use io.NewSectionReader to adapt io.ReaderAt
	var sectionReader = io.NewSectionReader(content, 0, contentLength)
	_, err = blobURL.Upload(ctx, sectionReader, headers, azblob.Metadata{}, azblob.BlobAccessConditions{}, azblob.DefaultAccessTier, azblob.BlobTagsMap{}, azblob.ClientProvidedKeyOptions{}, azblob.ImmutabilityPolicyOptions{})
	return err
}

func (s *store) buildBlobURL(path string) (*azblob.BlockBlobURL, error) {
	var u, err = url.Parse(fmt.Sprint(s.containerURL(), "/", path))
	if err != nil {
		return nil, err
	}
	var blobURL = azblob.NewBlockBlobURL(*u, s.pipeline)
	return &blobURL, nil
}

func (s *store) containerURL() string {
	return fmt.Sprintf("https://%s.%s/%s", s.storageAccount, s.blobDomain, s.container)
}
