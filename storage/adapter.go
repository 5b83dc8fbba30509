package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go/aws/awserr"
	aws3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/casdoor/oss"
)

// notFound maps a missing object reported by the backend to ErrNotFound.
// A missing bucket is a configuration error and is passed through.
func notFound(path string, err error) error {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return err
	}
	switch aerr.Code() {
	case aws3.ErrCodeNoSuchKey, "NotFound":
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case aws3.ErrCodeNoSuchBucket:
		return err
	}
	var rf awserr.RequestFailure
	if errors.As(err, &rf) && rf.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return err
}

// OSSAdapter adapts casdoor oss.StorageInterface to our Interface
type OSSAdapter struct {
	client oss.StorageInterface
}

// NewOSSAdapter creates a new OSS adapter
func NewOSSAdapter(client oss.StorageInterface) Interface {
	return &OSSAdapter{client: client}
}

// GetStream gets file as stream
func (a *OSSAdapter) GetStream(path string) (io.ReadCloser, error) {
	r, err := a.client.GetStream(path)
	if err != nil {
		return nil, notFound(path, err)
	}
	return r, nil
}

// Put stores reader into given path
func (a *OSSAdapter) Put(path string, reader io.Reader) (*Object, error) {
	ossObj, err := a.client.Put(path, reader)
	if err != nil {
		return nil, err
	}
	return &Object{
		Path:         ossObj.Path,
		Name:         ossObj.Name,
		LastModified: ossObj.LastModified,
		Size:         ossObj.Size,
	}, nil
}

// Delete deletes file. Deleting a missing object succeeds, as it does on
// the filesystem.
func (a *OSSAdapter) Delete(path string) error {
	if err := notFound(path, a.client.Delete(path)); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// GetURL gets public accessible URL
func (a *OSSAdapter) GetURL(path string) (string, error) {
	return a.client.GetURL(path)
}
