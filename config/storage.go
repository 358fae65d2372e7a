package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Blob store drivers.
const (
	BlobDriverNone  = ""
	BlobDriverS3    = "s3"
	BlobDriverMinIO = "minio"
)

// StorageConfig selects and configures the recipe image store.
type StorageConfig struct {
	Driver string `env:"BLOB_DRIVER" env-default:""`

	S3Bucket  string `env:"S3_BUCKET_NAME" env-default:"foodgram-recipe-images"`
	AWSRegion string `env:"AWS_REGION" env-default:"us-east-1"`

	MinIOEndpoint  string `env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY"`
	MinIOBucket    string `env:"MINIO_BUCKET" env-default:"foodgram"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL" env-default:"false"`
}

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     *s3.Client
	BucketName string
	Region     string
}

// NewS3Config initializes the S3 client from the default AWS credential chain
func NewS3Config(ctx context.Context, sc StorageConfig) (*S3Config, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(sc.AWSRegion),
	)
	if err != nil {
		return nil, err
	}

	return &S3Config{
		Client:     s3.NewFromConfig(awsCfg),
		BucketName: sc.S3Bucket,
		Region:     sc.AWSRegion,
	}, nil
}
