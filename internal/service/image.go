package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rasoihub/backend/config"
	"github.com/rasoihub/backend/internal/models"
)

// ImageService stores dish photos in S3 and records the public URL on the
// menu item.
type ImageService struct {
	db       *gorm.DB
	s3Config *config.S3Config
	logger   *zap.Logger
}

func NewImageService(db *gorm.DB, s3Config *config.S3Config, logger *zap.Logger) *ImageService {
	return &ImageService{
		db:       db,
		s3Config: s3Config,
		logger:   logger,
	}
}

// UploadMenuItemImage uploads image bytes for a menu item and updates its
// image URL. The menu item must belong to the given restaurant.
func (s *ImageService) UploadMenuItemImage(ctx context.Context, restaurantID, menuItemID uuid.UUID, imageData []byte, contentType string) (string, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).
		First(&item, "id = ? AND restaurant_id = ?", menuItemID, restaurantID).Error; err != nil {
		return "", err
	}

	key := fmt.Sprintf("dish-images/%s/%s.png", restaurantID, uuid.New())
	url, err := s.uploadToS3(ctx, imageData, key, contentType)
	if err != nil {
		return "", err
	}

	if err := s.db.WithContext(ctx).Model(&item).Update("image_url", url).Error; err != nil {
		return "", err
	}

	s.logger.Info("menu item image uploaded",
		zap.String("menu_item_id", menuItemID.String()),
		zap.String("url", url))
	return url, nil
}

func (s *ImageService) uploadToS3(ctx context.Context, imageData []byte, key, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/png"
	}
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
}
