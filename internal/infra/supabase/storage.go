package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Storage (implements port.LogoStore)
// ============================================================

// Storage adapts the Supabase Storage API for one bucket. Kept as a
// thin wrapper over Client so the bucket name stays configuration,
// not code scattered through handlers.
type Storage struct {
	client *Client
	bucket string
}

// NewStorage creates a storage adapter bound to a bucket.
func NewStorage(client *Client, bucket string) *Storage {
	return &Storage{client: client, bucket: bucket}
}

// UploadLogo uploads (upserting) an object and returns its public URL.
// The URL is stable across re-uploads; the dashboard cache-busts it
// with a timestamp query parameter on read.
func (s *Storage) UploadLogo(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UploadLogo")
	defer span.End()
	span.SetAttributes(
		attribute.String("storage.bucket", s.bucket),
		attribute.String("storage.path", objectPath),
	)

	c := s.client
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, s.bucket, objectPath)

	_, err := c.guard(ctx, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.serviceRoleKey)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("x-upsert", "true")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("supabase: storage upload failed",
				zap.String("path", objectPath),
				zap.Error(err),
			)
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Warn("supabase: storage upload non-2xx",
				zap.String("path", objectPath),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(body)),
			)
			return nil, &statusError{status: resp.StatusCode, message: string(body)}
		}
		return body, nil
	})
	if err != nil {
		return "", err
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, s.bucket, objectPath)
	return publicURL, nil
}
