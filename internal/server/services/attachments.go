package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	sc "github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Presigned is a time-limited URL for direct object storage access.
type Presigned struct {
	URL       string
	Method    string
	ExpiresAt time.Time
}

// AttachmentService hands out presigned S3 URLs for a single file attached
// to a todo. The API server never proxies file bytes.
type AttachmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
}

func NewAttachmentService(db *sql.DB, m repomanager.RepositoryManager, config *sc.Config, logger logging.Logger) *AttachmentService {
	return &AttachmentService{db: db, repomanager: m, config: config, logger: logger}
}

func newStorageKey(userID string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("todos/%s/%d/%d/%d/%v", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *AttachmentService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// PresignUpload replaces the attachment of a todo owned by userID with a
// fresh storage key and returns a presigned PUT for it.
func (s *AttachmentService) PresignUpload(ctx context.Context, userID, todoID string) (*Presigned, error) {
	if !s.config.AttachmentsEnabled() {
		return nil, common.ErrStorageDisabled
	}
	repo := s.repomanager.Todos(s.db)
	if _, err := ownedTodo(ctx, repo, userID, todoID); err != nil {
		return nil, err
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := newStorageKey(userID)
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	if err := repo.SetAttachment(ctx, todoID, key); err != nil {
		return nil, fmt.Errorf("set attachment: %w", err)
	}

	s.logger.Info(ctx, "attachment upload presigned", "user_id", userID, "todo_id", todoID)
	return &Presigned{URL: req.URL, Method: req.Method, ExpiresAt: time.Now().Add(presignExpiry)}, nil
}

// PresignDownload returns a presigned GET for the attachment of a todo
// owned by userID, or common.ErrorNotFound if it has none.
func (s *AttachmentService) PresignDownload(ctx context.Context, userID, todoID string) (*Presigned, error) {
	if !s.config.AttachmentsEnabled() {
		return nil, common.ErrStorageDisabled
	}
	todo, err := ownedTodo(ctx, s.repomanager.Todos(s.db), userID, todoID)
	if err != nil {
		return nil, err
	}
	if todo.AttachmentKey == "" {
		return nil, common.ErrorNotFound
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := todo.AttachmentKey
	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign get: %w", err)
	}

	return &Presigned{URL: req.URL, Method: req.Method, ExpiresAt: time.Now().Add(presignExpiry)}, nil
}
