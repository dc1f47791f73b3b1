package entity

import "time"

// DefectReport reporte de un defecto de calidad.
type DefectReport struct {
	ID          string
	Date        time.Time // fecha del hallazgo (solo día)
	Area        string
	Product     string
	Color       string
	LF          string
	PT          string
	LP          string
	Order       string
	Client      string
	Defects     []string // etiquetas del vocabulario del área
	Description string
	CreatedBy   string
	CreatedAt   time.Time
	Photos      []DefectPhoto
}

// DefectPhoto foto almacenada de un reporte.
type DefectPhoto struct {
	ID           string
	ReportID     string
	ObjectKey    string
	URL          string
	ThumbnailURL string
	CreatedAt    time.Time
}
