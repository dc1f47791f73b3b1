package quality

import "context"

// StoredObject URLs públicas de una foto guardada y su miniatura.
type StoredObject struct {
	URL          string
	ThumbnailURL string
}

// PhotoStorage almacén de objetos para fotos de defectos.
// Store guarda el original bajo objectKey y genera la miniatura; Delete borra ambos.
type PhotoStorage interface {
	Store(ctx context.Context, objectKey string, data []byte, contentType string) (StoredObject, error)
	Delete(ctx context.Context, objectKey string) error
}

// PhotoUpload foto recibida en el formulario.
type PhotoUpload struct {
	Filename string
	Data     []byte
}
