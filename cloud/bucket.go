/*
Copyright © 2018 the InMAP authors.
This file is part of mfinput.

mfinput is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

mfinput is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with mfinput.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package cloud opens the blob storage that holds model input and
// output files.
package cloud

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/memblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcp"
)

// OpenBucket returns the blob storage bucket specified by bucketName,
// which must be in the format 'provider://name'. The accepted providers
// are "file" for a directory on the local filesystem, "mem" for an
// in-memory bucket (e.g., for testing), "gs" for Google Cloud Storage,
// and "s3" for AWS S3. A bucketName without a provider is treated as a
// local directory.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("cloud.OpenBucket: %v", err)
	}
	switch u.Scheme {
	case "", "file":
		return fileBucket(filepath.Join(u.Host, u.Path))
	case "mem":
		return memblob.OpenBucket(nil), nil
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("cloud.OpenBucket: invalid provider %s", u.Scheme)
	}
}

func fileBucket(dir string) (*blob.Bucket, error) {
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cloud.OpenBucket: %v", err)
	}
	return fileblob.OpenBucket(dir, nil)
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, c, name, nil)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, fmt.Errorf("cloud.OpenBucket: %v", err)
	}
	return s3blob.OpenBucket(ctx, s, name, nil)
}

// SplitPath splits a file location into a bucket name that can be
// passed to OpenBucket and a key within that bucket. Locations without
// a provider are split into their directory and base name.
func SplitPath(location string) (bucketName, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("cloud: parsing location %s: %v", location, err)
	}
	switch u.Scheme {
	case "", "file":
		p := filepath.Join(u.Host, u.Path)
		return "file://" + filepath.Dir(p), filepath.Base(p), nil
	default:
		return u.Scheme + "://" + u.Host, strings.TrimLeft(u.Path, "/"), nil
	}
}
