// Package storage stores attachment objects on the local filesystem or an
// S3 compatible bucket.
package storage

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/viper"
)

// ErrNotFound is returned when an object does not exist
var ErrNotFound = errors.New("object not found")

// Interface represents the common interface for storage
type Interface interface {
	GetStream(path string) (io.ReadCloser, error)
	Put(path string, reader io.Reader) (*Object, error)
	Delete(path string) error
	GetURL(path string) (string, error)
}

// Object represents a storage object
type Object struct {
	Path         string
	Name         string
	LastModified *time.Time
	Size         int64
}

// Config storage configuration
type Config struct {
	Provider     string `json:"provider" yaml:"provider"`
	ID           string `json:"id" yaml:"id"`
	Secret       string `json:"secret" yaml:"secret"`
	Region       string `json:"region" yaml:"region"`
	Bucket       string `json:"bucket" yaml:"bucket"`
	Endpoint     string `json:"endpoint" yaml:"endpoint"`
	PublicPrefix string `json:"public_prefix" yaml:"public_prefix"`
}

// Validate validates the storage configuration
func (c *Config) Validate() error {
	if c.Provider == "" {
		return errors.New("storage provider is required")
	}

	switch c.Provider {
	case "filesystem":
		if c.Bucket == "" {
			return errors.New("bucket (local path) is required for filesystem storage")
		}
	case "aws-s3", "minio":
		if c.ID == "" || c.Secret == "" || c.Bucket == "" {
			return errors.New("id, secret, and bucket are required for cloud storage")
		}
		if c.Provider == "aws-s3" && c.Region == "" {
			return errors.New("region is required for aws-s3 storage")
		}
		if c.Provider == "minio" && c.Endpoint == "" {
			return errors.New("endpoint is required for minio storage")
		}
	default:
		return fmt.Errorf("unsupported storage provider: %s", c.Provider)
	}

	return nil
}

// NewStorage creates a new storage instance
func NewStorage(c *Config) (Interface, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage config: %w", err)
	}

	switch c.Provider {
	case "minio":
		return NewMinio(c), nil
	case "aws-s3":
		return NewS3(c), nil
	default:
		fs, err := NewFileSystem(c.Bucket)
		if err != nil {
			return nil, err
		}
		return fs, nil
	}
}

// GetConfig gets storage config from viper
func GetConfig(v *viper.Viper) *Config {
	return &Config{
		Provider:     v.GetString("storage.provider"),
		ID:           v.GetString("storage.id"),
		Secret:       v.GetString("storage.secret"),
		Region:       v.GetString("storage.region"),
		Bucket:       v.GetString("storage.bucket"),
		Endpoint:     v.GetString("storage.endpoint"),
		PublicPrefix: v.GetString("storage.public_prefix"),
	}
}
