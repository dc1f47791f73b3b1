// Package storage guarda las fotos de defectos en Google Cloud Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/jhoicas/control-calidad/internal/application/quality"
	"github.com/jhoicas/control-calidad/pkg/config"
	"github.com/jhoicas/control-calidad/pkg/logger"
)

var _ quality.PhotoStorage = (*GCSPhotoStorage)(nil)

// GCSPhotoStorage implementación de quality.PhotoStorage sobre un bucket de GCS.
type GCSPhotoStorage struct {
	client  *gcs.Client
	bucket  string
	baseURL string
	log     *logger.Logger
}

// NewGCSPhotoStorage abre el cliente de GCS. Sin GCS_CREDENTIALS_JSON usa Application Default Credentials.
// Verifica que el bucket exista y sea accesible.
func NewGCSPhotoStorage(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*GCSPhotoStorage, error) {
	var opts []option.ClientOption
	if creds := strings.TrimSpace(cfg.CredentialsJSON); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: crear cliente: %w", err)
	}
	if _, err := client.Bucket(cfg.Bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("gcs: bucket %q no accesible: %w", cfg.Bucket, err)
	}
	return &GCSPhotoStorage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		log:     log,
	}, nil
}

// Store sube el original y su miniatura. Si la miniatura falla la foto se guarda sin ella.
func (s *GCSPhotoStorage) Store(ctx context.Context, objectKey string, data []byte, contentType string) (quality.StoredObject, error) {
	if err := s.write(ctx, objectKey, data, contentType); err != nil {
		return quality.StoredObject{}, err
	}
	out := quality.StoredObject{URL: s.PublicURL(objectKey)}

	thumb, err := MakeThumbnail(data)
	if err != nil {
		s.log.Warn().Err(err).Str("object_key", objectKey).Msg("miniatura no generada")
		return out, nil
	}
	thumbKey := ThumbnailKey(objectKey)
	if err := s.write(ctx, thumbKey, thumb, "image/jpeg"); err != nil {
		s.log.Warn().Err(err).Str("object_key", thumbKey).Msg("miniatura no subida")
		return out, nil
	}
	out.ThumbnailURL = s.PublicURL(thumbKey)
	return out, nil
}

func (s *GCSPhotoStorage) write(ctx context.Context, key string, data []byte, contentType string) error {
	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return fmt.Errorf("gcs: subir %s: %w", key, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("gcs: cerrar %s: %w", key, err)
	}
	return nil
}

// Delete borra el objeto y su miniatura. Un objeto inexistente no es error.
func (s *GCSPhotoStorage) Delete(ctx context.Context, objectKey string) error {
	for _, key := range []string{objectKey, ThumbnailKey(objectKey)} {
		err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
		if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
			return fmt.Errorf("gcs: borrar %s: %w", key, err)
		}
	}
	return nil
}

// PublicURL URL pública de un objeto.
func (s *GCSPhotoStorage) PublicURL(objectKey string) string {
	return publicURL(s.baseURL, objectKey)
}

func publicURL(baseURL, objectKey string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(objectKey, "/")
}

// Close libera el cliente.
func (s *GCSPhotoStorage) Close() error {
	return s.client.Close()
}
