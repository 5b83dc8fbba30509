package storage

import (
	aws3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/casdoor/oss/s3"
)

// NewS3 creates new aws s3 client
func NewS3(c *Config) Interface {
	client := s3.New(&s3.Config{
		AccessID:   c.ID,
		AccessKey:  c.Secret,
		Region:     c.Region,
		Bucket:     c.Bucket,
		Endpoint:   c.Endpoint,
		S3Endpoint: c.Endpoint,
		ACL:        aws3.BucketCannedACLPrivate,
	})
	return NewOSSAdapter(client)
}

// NewMinio creates new minio client
func NewMinio(c *Config) Interface {
	region := c.Region
	if region == "" {
		region = "us-east-1"
	}

	client := s3.New(&s3.Config{
		AccessID:         c.ID,
		AccessKey:        c.Secret,
		Region:           region,
		Bucket:           c.Bucket,
		Endpoint:         c.Endpoint,
		S3Endpoint:       c.Endpoint,
		ACL:              aws3.BucketCannedACLPrivate,
		S3ForcePathStyle: true,
	})
	return NewOSSAdapter(client)
}
