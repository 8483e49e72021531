package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/shoplist/internal/common"
	sc "github.com/dmitrijs2005/shoplist/internal/server/config"
	"github.com/dmitrijs2005/shoplist/internal/server/models"
	"github.com/dmitrijs2005/shoplist/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// S3 entry points, swapped out in tests.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return s3.NewPresignClient(c).PresignGetObject(ctx, in, optFns...)
	}

	now = time.Now
)

// ExportSnapshot is the JSON document written for one exported list.
type ExportSnapshot struct {
	List       ExportedList   `json:"list"`
	Items      []ExportedItem `json:"items"`
	ExportedAt time.Time      `json:"exported_at"`
}

type ExportedList struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type ExportedItem struct {
	Name      string    `json:"name"`
	Quantity  string    `json:"quantity"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportResult locates an uploaded snapshot.
type ExportResult struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

// ExportService writes list snapshots to S3-compatible storage and hands
// out time-limited download links.
type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *ExportService {
	return &ExportService{db: db, repomanager: m, config: cfg}
}

// ExportKey names the object for a snapshot taken by userID at t.
func ExportKey(userID string, t time.Time) string {
	return fmt.Sprintf("exports/%s/%04d/%02d/%02d/%v.json", userID, t.Year(), t.Month(), t.Day(), uuid.New())
}

func (s *ExportService) client(ctx context.Context) (*s3.Client, error) {
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

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Snapshot reads listID and its items on behalf of userID.
func (s *ExportService) Snapshot(ctx context.Context, userID, listID string) (*ExportSnapshot, error) {
	list, err := s.repomanager.Lists(s.db).Get(ctx, userID, listID)
	if err != nil {
		return nil, err
	}

	items, err := s.repomanager.Items(s.db).Select(ctx, userID,
		[]models.Filter{{Column: "list_id", Value: listID}}, nil)
	if err != nil {
		return nil, err
	}

	snap := &ExportSnapshot{
		List:       ExportedList{ID: list.ID, Name: list.Name, CreatedAt: list.CreatedAt},
		Items:      make([]ExportedItem, 0, len(items)),
		ExportedAt: now().UTC(),
	}
	for _, it := range items {
		snap.Items = append(snap.Items, ExportedItem{
			Name:      it.Name,
			Quantity:  it.Quantity,
			Completed: it.Completed,
			CreatedAt: it.CreatedAt,
		})
	}
	return snap, nil
}

// ExportList uploads a snapshot of listID and returns a presigned GET URL.
func (s *ExportService) ExportList(ctx context.Context, userID, listID string) (*ExportResult, error) {
	if listID == "" {
		return nil, common.Invalidf("list_id is required")
	}

	snap, err := s.Snapshot(ctx, userID, listID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: list %s", common.ErrorNotFound, listID)
		}
		return nil, err
	}

	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	c, err := s.client(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	bucket := s.config.S3Bucket
	key := ExportKey(userID, snap.ExportedAt)

	_, err = putObject(c, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}

	validity := s.config.ExportURLValidity
	req, err := presignGetObject(c, ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(validity))
	if err != nil {
		return nil, fmt.Errorf("presign snapshot: %w", err)
	}

	return &ExportResult{Key: key, URL: req.URL, ExpiresAt: snap.ExportedAt.Add(validity)}, nil
}
