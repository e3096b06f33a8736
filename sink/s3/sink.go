// Package s3 provides the s3:// sink, which writes Plans to AWS S3 or an
// S3-compatible endpoint.
package s3

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	log "github.com/sirupsen/logrus"
	"go.gazette.dev/rackplan/sink"
)

// SinkQueryArgs contains fields that are parsed from the query arguments
// of an s3:// sink URL.
type SinkQueryArgs struct {
	// AWS Profile to extract credentials from the shared credentials file.
	// If empty, the default credentials are used.
	Profile string
	// Endpoint to connect to S3. If empty, the default S3 service is used.
	Endpoint string
	// ACL applied when writing plans. By default, this is
	// s3.ObjectCannedACLBucketOwnerFullControl.
	ACL string
	// Storage class applied when writing plans. By default,
	// this is s3.ObjectStorageClassStandard.
	StorageClass string
	// SSE is the server-side encryption type to be applied (eg, "AES256").
	// By default, encryption is not used.
	SSE string
	// SSEKMSKeyId specifies the ID for the AWS KMS symmetric customer managed key
	// By default, not used.
	SSEKMSKeyId string
	// Region is the region for the bucket. If empty, the region is determined
	// from `Profile` or the default credentials.
	Region string
}

type store struct {
	bucket string
	args   SinkQueryArgs
	client *s3.S3
}

// New creates a new S3 Sink from the provided URL.
func New(ep *url.URL) (sink.Sink, error) {
	var bucket, key, args, err = parseURL(ep)
	if err != nil {
		return nil, err
	}

	var awsConfig = aws.NewConfig()
	awsConfig.WithCredentialsChainVerboseErrors(true)

	if args.Region != "" {
		awsConfig.WithRegion(args.Region)
	}
	if args.Endpoint != "" {
		awsConfig.WithEndpoint(args.Endpoint)
		// We must force path style because bucket-named virtual hosts
		// are not compatible with explicit endpoints.
		awsConfig.WithS3ForcePathStyle(true)
	} else {
		// Real S3. Override the default http.Transport's behavior of inserting
		// "Accept-Encoding: gzip" and transparently decompressing client-side.
		awsConfig.WithHTTPClient(&http.Client{
			Transport: &http.Transport{DisableCompression: true},
		})
	}

	awsSession, err := session.NewSessionWithOptions(session.Options{
		Profile: args.Profile,
	})
	if err != nil {
		return nil, fmt.Errorf("constructing S3 session: %s", err)
	}
	// The aws sdk will always just return an error if this Region is not set, even if
	// the Endpoint was provided explicitly. It's important to fail-fast in this case.
	if args.Region == "" && aws.StringValue(awsSession.Config.Region) == "" {
		return nil, fmt.Errorf("missing AWS region configuration for profile %q", args.Profile)
	}

	log.WithFields(log.Fields{
		"endpoint": args.Endpoint,
		"profile":  args.Profile,
		"bucket":   bucket,
		"key":      key,
	}).Info("constructed new aws.Session")

	var s = &store{
		bucket: bucket,
		args:   args,
		client: s3.New(awsSession, awsConfig),
	}
	return sink.NewBlobSink(s, key), nil
}

func parseURL(ep *url.URL) (bucket, key string, args SinkQueryArgs, err error) {
	if err = sink.ParseQueryArgs(ep, &args); err != nil {
		return
	}
	bucket, key = ep.Host, strings.TrimPrefix(ep.Path, "/")

	if bucket == "" {
		err = fmt.Errorf("s3:// sink requires a bucket")
	} else if key == "" || strings.HasSuffix(key, "/") {
		err = fmt.Errorf("s3:// sink requires an object key (%q)", key)
	}
	return
}

func (s *store) Provider() string { return "s3" }

func (s *store) Put(ctx context.Context, path string, content io.ReaderAt, contentLength int64, contentEncoding string) error {
	var putObj = s.putObjectInput(path, content, contentLength, contentEncoding)
	var _, err = s.client.PutObjectWithContext(ctx, putObj)
	return err
}

func (s *store) putObjectInput(path string, content io.ReaderAt, contentLength int64, contentEncoding string) *s3.PutObjectInput {
	// S3 SDK requires io.ReadSeeker, so we use io.NewSectionReader to adapt io.ReaderAt
	var putObj = &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
		Body:   io.NewSectionReader(content, 0, contentLength),
		ACL:    aws.String(s3.ObjectCannedACLBucketOwnerFullControl),
	}
	if s.args.ACL != "" {
		putObj.ACL = aws.String(s.args.ACL)
	}
	if s.args.StorageClass != "" {
		putObj.StorageClass = aws.String(s.args.StorageClass)
	}
	if s.args.SSE != "" {
		putObj.ServerSideEncryption = aws.String(s.args.SSE)
	}
	if s.args.SSEKMSKeyId != "" {
		putObj.SSEKMSKeyId = aws.String(s.args.SSEKMSKeyId)
	}
	if contentEncoding != "" {
		putObj.ContentEncoding = aws.String(contentEncoding)
	}
	return putObj
}
