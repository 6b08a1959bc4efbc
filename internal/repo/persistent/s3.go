package persistent

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/whalechillz/image-assets/pkg/s3client"
)

type AssetRepo struct {
	*s3client.S3Client
	bucket string
}

func NewAssetRepo(s3c *s3client.S3Client, bucket string) *AssetRepo {
	return &AssetRepo{s3c, bucket}
}

func (r *AssetRepo) Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	_, err := r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          data,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("AssetRepo - Upload - r.Client.PutObject: %w", err)
	}

	return nil
}

func (r *AssetRepo) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := r.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("AssetRepo - Download - r.Client.GetObject: %w", err)
	}

	return result.Body, nil
}

func (r *AssetRepo) DownloadBytes(ctx context.Context, key string) ([]byte, error) {
	result, err := r.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("AssetRepo - DownloadBytes - r.Client.GetObject: %w", err)
	}
	defer result.Body.Close()

	b, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("AssetRepo - DownloadBytes - io.ReadAll: %w", err)
	}

	return b, nil
}

func (r *AssetRepo) Delete(ctx context.Context, key string) error {
	_, err := r.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("AssetRepo - Delete - r.Client.DeleteObject: %w", err)
	}

	return nil
}
