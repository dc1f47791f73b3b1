package storage

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // decodificador WebP para imaging.Decode
)

// ThumbnailWidth ancho en píxeles de las miniaturas; el alto mantiene la proporción.
const ThumbnailWidth = 200

// MakeThumbnail decodifica la imagen y devuelve una miniatura JPEG de ThumbnailWidth de ancho.
func MakeThumbnail(original []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(original), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decodificar imagen: %w", err)
	}
	thumb := imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("codificar miniatura: %w", err)
	}
	return buf.Bytes(), nil
}

// ThumbnailKey clave de la miniatura de objectKey: mismo directorio, prefijo thumb_ y extensión .jpg.
func ThumbnailKey(objectKey string) string {
	dir, file := path.Split(objectKey)
	base := strings.TrimSuffix(file, path.Ext(file))
	return dir + "thumb_" + base + ".jpg"
}
