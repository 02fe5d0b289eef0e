package services

import (
	"context"
	"fmt"
	"time"

	"kindling_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MediaService is the media collaborator boundary: clients upload through
// presigned URLs and attach the resulting opaque descriptor to messages.
type MediaService struct {
	Client *s3.Client
	Bucket string
	Region string
}

func NewMediaService(cfg aws.Config, bucket string) *MediaService {
	return &MediaService{
		Client: s3.NewFromConfig(cfg),
		Bucket: bucket,
		Region: cfg.Region,
	}
}

// PresignUpload generates a presigned URL for uploading an attachment, plus
// the object key the client should report back.
func (s *MediaService) PresignUpload(ctx context.Context, fileName, fileType string) (string, string, error) {
	key := "chat-media/" + time.Now().Format("20060102150405") + "-" + fileName
	params := &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}
	presigner := s3.NewPresignClient(s.Client)
	presigned, err := presigner.PresignPutObject(ctx, params, s3.WithPresignExpires(5*time.Minute))
	if err != nil {
		return "", "", err
	}
	return presigned.URL, key, nil
}

// PresignRead generates a presigned URL for reading an attachment.
func (s *MediaService) PresignRead(ctx context.Context, key string) (string, error) {
	params := &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}
	presigner := s3.NewPresignClient(s.Client)
	presigned, err := presigner.PresignGetObject(ctx, params, s3.WithPresignExpires(5*time.Minute))
	if err != nil {
		return "", err
	}
	return presigned.URL, nil
}

// Descriptor builds the stored media descriptor for an uploaded object. The
// descriptor is opaque to the rest of the system and saved on the message
// verbatim.
func (s *MediaService) Descriptor(key, contentType string, sizeBytes int64, width, height int) models.MediaDescriptor {
	return models.MediaDescriptor{
		URL:         fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Bucket, s.Region, key),
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		Width:       width,
		Height:      height,
	}
}
