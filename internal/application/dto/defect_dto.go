package dto

import "time"

// CreateDefectRequest campos del formulario de registro de defectos (multipart).
type CreateDefectRequest struct {
	Date        string   `json:"date" form:"date"`
	Area        string   `json:"area" form:"area" validate:"required"`
	Product     string   `json:"product" form:"product" validate:"required,max=200"`
	Color       string   `json:"color" form:"color" validate:"max=100"`
	LF          string   `json:"lf" form:"lf" validate:"max=100"`
	PT          string   `json:"pt" form:"pt" validate:"max=100"`
	LP          string   `json:"lp" form:"lp" validate:"max=100"`
	Order       string   `json:"order" form:"order" validate:"max=100"`
	Client      string   `json:"client" form:"client" validate:"max=200"`
	Defects     []string `json:"defects" form:"defects"`
	Description string   `json:"description" form:"description" validate:"max=2000"`
}

// ListDefectsRequest filtros del listado de reportes.
type ListDefectsRequest struct {
	PageRequest
	From   string `query:"from"`
	To     string `query:"to"`
	Area   string `query:"area"`
	Client string `query:"client" validate:"max=200"`
	Order  string `query:"order" validate:"max=100"`
}

// DefectPhotoResponse foto almacenada.
type DefectPhotoResponse struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// DefectReportResponse reporte con sus fotos.
type DefectReportResponse struct {
	ID          string                `json:"id"`
	Date        string                `json:"date"`
	Area        string                `json:"area"`
	Product     string                `json:"product"`
	Color       string                `json:"color"`
	LF          string                `json:"lf"`
	PT          string                `json:"pt"`
	LP          string                `json:"lp"`
	Order       string                `json:"order"`
	Client      string                `json:"client"`
	Defects     []string              `json:"defects"`
	Description string                `json:"description"`
	Photos      []DefectPhotoResponse `json:"photos"`
	CreatedBy   string                `json:"created_by,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// PhotoFailure foto que no se pudo almacenar; el reporte se conserva igual.
type PhotoFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// RegisterDefectResponse reporte creado y fotos que fallaron.
type RegisterDefectResponse struct {
	Report       DefectReportResponse `json:"report"`
	PhotosFailed []PhotoFailure       `json:"photos_failed"`
}

// DefectListResponse página de reportes.
type DefectListResponse struct {
	Items []DefectReportResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// DeleteAllDefectsResponse resultado del borrado masivo.
type DeleteAllDefectsResponse struct {
	ReportsDeleted int `json:"reports_deleted"`
	PhotosDeleted  int `json:"photos_deleted"`
	ObjectsFailed  int `json:"objects_failed"`
}

// AreaCatalogResponse vocabulario de defectos de un área.
type AreaCatalogResponse struct {
	Area    string   `json:"area"`
	Defects []string `json:"defects"`
}
