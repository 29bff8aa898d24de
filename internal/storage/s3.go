package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"marketBack/internal/config"
	"marketBack/internal/models"
)

// S3Store keeps proofs in an S3 compatible bucket. Objects are private.
type S3Store struct {
	Client  s3iface.S3API
	Bucket  string
	MaxSize int64
}

func NewS3Store(cfg config.S3Config, maxSize int64) (*S3Store, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create s3 session: %w", err)
	}
	return &S3Store{Client: s3.New(sess), Bucket: cfg.Bucket, MaxSize: maxSize}, nil
}

func (s *S3Store) SaveProof(ctx context.Context, listingID int, originalName string, r io.Reader) (models.ListingProof, error) {
	f, err := readProof(listingID, r, s.MaxSize)
	if err != nil {
		return models.ListingProof{}, err
	}

	_, err = s.Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(f.relPath),
		Body:          f.reader(),
		ContentLength: aws.Int64(int64(len(f.data))),
		ContentType:   aws.String(f.mimeType),
		ACL:           aws.String(s3.ObjectCannedACLPrivate),
	})
	if err != nil {
		return models.ListingProof{}, fmt.Errorf("unable to upload proof to S3: %w", err)
	}
	return f.proof(listingID, originalName), nil
}

func (s *S3Store) Delete(ctx context.Context, relPath string) error {
	if !validRelPath(relPath) {
		return fmt.Errorf("invalid proof path %q", relPath)
	}
	_, err := s.Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(relPath),
	})
	if err != nil {
		return fmt.Errorf("unable to delete proof from S3: %w", err)
	}
	return nil
}
