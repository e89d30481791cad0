package media_storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"github.com/whopranjalshah/me-api-playground/internal/application/service"
	"github.com/whopranjalshah/me-api-playground/internal/config"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

// cloudinaryAdapter stores database dumps as raw assets.
type cloudinaryAdapter struct {
	cld    *cloudinary.Cloudinary
	logger logger.Logger
}

func NewCloudinaryAdapter(cfg config.Config, log logger.Logger) (service.Uploader, error) {
	c := cfg.Cloudinary
	if c.CloudName == "" || c.ApiKey == "" || c.ApiSecret == "" {
		return nil, errors.New("cloudinary cloud_name, api_key and api_secret must all be set")
	}

	cld, err := cloudinary.NewFromParams(c.CloudName, c.ApiKey, c.ApiSecret)
	if err != nil {
		return nil, fmt.Errorf("cannot init cloudinary: %w", err)
	}

	log.Info("Cloudinary backup storage ready", zap.String("cloud_name", c.CloudName))
	return &cloudinaryAdapter{cld: cld, logger: log}, nil
}

func (a *cloudinaryAdapter) Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error) {
	result, err := a.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:     publicID,
		Folder:       folder,
		ResourceType: "raw",
		Overwrite:    api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload of %s failed: %w", publicID, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected %s: %s", publicID, result.Error.Message)
	}

	a.logger.Debug("Uploaded raw asset",
		zap.String("public_id", result.PublicID),
		zap.Int("bytes", result.Bytes),
	)
	return result.SecureURL, nil
}
