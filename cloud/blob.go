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

package cloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"

	"gocloud.dev/blob"
)

// ReadBlob reads the given blob from the given bucket.
func ReadBlob(ctx context.Context, bucket *blob.Bucket, key string) ([]byte, error) {
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("cloud: reading blob key %s: %v", key, err)
	}
	defer r.Close()
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cloud: reading blob key %s: %v", key, err)
	}
	return b, nil
}

// WriteBlob writes the given data to the given bucket.
func WriteBlob(ctx context.Context, bucket *blob.Bucket, key string, data []byte) error {
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("cloud: creating writer for blob %s: %v", key, err)
	}
	if _, err = io.Copy(w, bytes.NewReader(data)); err != nil {
		w.Close()
		return fmt.Errorf("cloud: copying blob %s: %v", key, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("cloud: writing blob %s: %v", key, err)
	}
	return nil
}

// ReadFile reads a file given as a location accepted by SplitPath.
func ReadFile(ctx context.Context, location string) ([]byte, error) {
	bucketName, key, err := SplitPath(location)
	if err != nil {
		return nil, err
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return nil, err
	}
	defer bucket.Close()
	return ReadBlob(ctx, bucket, key)
}

// WriteFile writes data to a file given as a location accepted by
// SplitPath.
func WriteFile(ctx context.Context, location string, data []byte) error {
	bucketName, key, err := SplitPath(location)
	if err != nil {
		return err
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return err
	}
	defer bucket.Close()
	return WriteBlob(ctx, bucket, key, data)
}
