package quality

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// Tipos de imagen aceptados y su extensión de objeto.
var allowedPhotoTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// sniffPhoto detecta el tipo real por contenido (no por nombre ni cabecera del cliente).
func sniffPhoto(data []byte, maxBytes int64) (contentType, ext string, err error) {
	if len(data) == 0 {
		return "", "", fmt.Errorf("archivo vacío")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", "", fmt.Errorf("supera el tamaño máximo de %d MB", maxBytes>>20)
	}
	contentType = http.DetectContentType(data)
	ext, ok := allowedPhotoTypes[contentType]
	if !ok {
		return "", "", fmt.Errorf("tipo de archivo no permitido: %s", contentType)
	}
	return contentType, ext, nil
}

// photoObjectKey clave del objeto: defects/<report-id>/<uuid>.<ext>
func photoObjectKey(reportID, ext string) string {
	return fmt.Sprintf("defects/%s/%s.%s", reportID, uuid.New().String(), ext)
}
