package clients

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// StorageClient uploads product images to object storage and returns a
// publicly resolvable URL. Callers fall back to PlaceholderImageURL on
// failure instead of blocking the product save.
type StorageClient interface {
	UploadProductImage(ctx context.Context, ownerID, filename, contentType string, data []byte) (string, error)
}

type storageHTTPClient struct {
	baseURL string
	apiKey  string
	bucket  string
	client  *http.Client
	log     *logrus.Logger
}

func NewStorageHTTPClient(baseURL, apiKey, bucket string, timeout time.Duration, logger *logrus.Logger) StorageClient {
	return &storageHTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		bucket:  bucket,
		client: &http.Client{
			Timeout: timeout,
		},
		log: logger,
	}
}

func (c *storageHTTPClient) UploadProductImage(ctx context.Context, ownerID, filename, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image data is empty")
	}

	// Object names are namespaced per owner and randomized so repeated
	// uploads of the same filename never collide.
	objectPath := fmt.Sprintf("%s/%s%s", ownerID, uuid.NewString(), path.Ext(filename))
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, objectPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		c.log.Errorf("StorageClient: Failed to create upload request for '%s': %v", filename, err)
		return "", fmt.Errorf("failed to create storage request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Errorf("StorageClient: Failed to upload '%s': %v", filename, err)
		return "", fmt.Errorf("failed to communicate with object storage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.log.Errorf("StorageClient: Upload of '%s' failed with status %d. Response body: %s", filename, resp.StatusCode, string(bodyBytes))
		return "", fmt.Errorf("object storage returned status %d", resp.StatusCode)
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, objectPath)
	c.log.Infof("StorageClient: Uploaded '%s' to %s", filename, publicURL)
	return publicURL, nil
}

// PlaceholderImageURL builds a generated stand-in image for a product
// whose upload failed or that never had an image.
func PlaceholderImageURL(productName string) string {
	if productName == "" {
		productName = "Product"
	}
	return "https://placehold.co/300x300?text=" + url.QueryEscape(productName)
}
