package http

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/control-calidad/internal/application/dto"
	"github.com/jhoicas/control-calidad/internal/application/quality"
)

// PhotoField nombre del campo multipart con las fotos del reporte.
const PhotoField = "photos"

const reportNotFound = "reporte no encontrado"

// DefectHandler maneja registro, consulta y borrado de reportes de defectos.
type DefectHandler struct {
	uc            *quality.DefectUseCase
	maxPhotoBytes int64
}

// NewDefectHandler construye el handler. maxPhotoBytes acota lo que se lee de cada archivo.
func NewDefectHandler(uc *quality.DefectUseCase, maxPhotoBytes int64) *DefectHandler {
	return &DefectHandler{uc: uc, maxPhotoBytes: maxPhotoBytes}
}

// Catalog godoc
// @Summary      Áreas y vocabulario de defectos
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.AreaCatalogResponse
// @Router       /api/catalog/areas [get]
func (h *DefectHandler) Catalog(c *fiber.Ctx) error {
	return c.JSON(h.uc.Catalog())
}

// Register godoc
// @Summary      Registrar reporte de defecto con fotos
// @Tags         defects
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        area         formData  string  true   "SILLAS | SALAS"
// @Param        product      formData  string  true   "Producto"
// @Param        defects      formData  []string  true "Etiquetas del vocabulario del área"
// @Param        date         formData  string  false  "AAAA-MM-DD (hoy por defecto)"
// @Param        photos       formData  file    false  "Fotos (jpeg, png, webp)"
// @Success      201  {object}  dto.RegisterDefectResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/defects [post]
func (h *DefectHandler) Register(c *fiber.Ctx) error {
	var in dto.CreateDefectRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}

	var uploads []quality.PhotoUpload
	if form, err := c.MultipartForm(); err == nil {
		uploads = make([]quality.PhotoUpload, 0, len(form.File[PhotoField]))
		for _, fh := range form.File[PhotoField] {
			data, err := h.readPart(fh)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
					Code: "INVALID_PHOTO", Message: err.Error(), Field: PhotoField,
				})
			}
			uploads = append(uploads, quality.PhotoUpload{Filename: fh.Filename, Data: data})
		}
	}

	out, err := h.uc.Register(c.Context(), GetUserID(c), in, uploads)
	if err != nil {
		return writeError(c, err, reportNotFound)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// readPart lee a lo sumo maxPhotoBytes+1 bytes; el caso de uso rechaza lo que exceda.
func (h *DefectHandler) readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("no se pudo abrir %s: %w", fh.Filename, err)
	}
	defer f.Close()
	r := io.Reader(f)
	if h.maxPhotoBytes > 0 {
		r = io.LimitReader(f, h.maxPhotoBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("no se pudo leer %s: %w", fh.Filename, err)
	}
	return data, nil
}

// List godoc
// @Summary      Listar reportes de defectos
// @Tags         defects
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "Desde (AAAA-MM-DD)"
// @Param        to      query  string  false  "Hasta (AAAA-MM-DD)"
// @Param        area    query  string  false  "Área"
// @Param        client  query  string  false  "Cliente (sin distinguir acentos)"
// @Param        order   query  string  false  "Pedido"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.DefectListResponse
// @Router       /api/defects [get]
func (h *DefectHandler) List(c *fiber.Ctx) error {
	var in dto.ListDefectsRequest
	if ok, err := parseQuery(c, &in); !ok {
		return err
	}
	out, err := h.uc.List(c.Context(), in)
	if err != nil {
		return writeError(c, err, reportNotFound)
	}
	return c.JSON(out)
}

// Photos godoc
// @Summary      Fotos de un reporte
// @Tags         defects
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del reporte"
// @Success      200  {array}  dto.DefectPhotoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/defects/{id}/photos [get]
func (h *DefectHandler) Photos(c *fiber.Ctx) error {
	out, err := h.uc.Photos(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err, reportNotFound)
	}
	return c.JSON(out)
}

// DeleteAll godoc
// @Summary      Borrar todos los reportes y sus fotos
// @Tags         defects
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DeleteAllDefectsResponse
// @Router       /api/defects [delete]
func (h *DefectHandler) DeleteAll(c *fiber.Ctx) error {
	out, err := h.uc.DeleteAll(c.Context(), GetUserID(c))
	if err != nil {
		return writeError(c, err, reportNotFound)
	}
	return c.JSON(out)
}
