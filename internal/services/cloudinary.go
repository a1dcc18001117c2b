package services

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const avatarFolder = "avatars"

// CloudinaryUploader implements AvatarUploader. Each user has one image,
// public id = user id, overwritten on every upload.
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryUploader{cld: cld}, nil
}

func (c *CloudinaryUploader) UploadAvatar(ctx context.Context, userID string, image io.Reader) (string, error) {
	res, err := c.cld.Upload.Upload(ctx, image, uploader.UploadParams{
		Folder:       avatarFolder,
		PublicID:     userID,
		Overwrite:    api.Bool(true),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", res.Error.Message)
	}

	return res.SecureURL, nil
}
