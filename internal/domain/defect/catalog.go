// Package defect define las áreas de producción y el vocabulario de defectos de cada una.
package defect

import "sort"

// Áreas de producción.
const (
	AreaSillas = "SILLAS"
	AreaSalas  = "SALAS"
)

var sillas = []string{
	"GOLPE DES. DE LACA",
	"GOLPE ANT. DE LACA",
	"DESPOSTILLADO",
	"RAYAS DES. DE LACA",
	"RAYAS ANT. DE LACA",
	"MARCA PULIDORA",
	"MARCA CARACOL",
	"SIN RESANE",
	"EXCESO DE RESANE",
	"LACA MANCHA",
	"LACA CHORREADA",
	"LACA MARCAS",
	"LACA GRUMO",
	"LACA BRISIADO",
	"GRAPA VISIBLE",
	"CASCO DESCUADRADO",
	"CASCO QUEBRADO",
	"BONFORD ROTO",
	"COSTURA DESALINEADA",
	"PESPUNTE FLOJO",
	"FALLA DE TELA",
	"DIFERENCIA DE TONO",
	"MAL TAPIZADO",
	"TELA SUCIA",
	"TELA ROTA",
	"RESPALDO QUEBRADO",
	"OTRO",
}

var salas = []string{
	"MAL TAPIZADO",
	"BONFORD ROTO",
	"GRAPA VISIBLE",
	"TIRA TACHUELA DESALINEADO",
	"TIRA TACHUELA SUELTA",
	"JALONES DESALINEADOS",
	"JALONES SUELTOS",
	"COSTURA DESALINEADA",
	"PESPUNTE FLOJO",
	"FALLA DE TELA",
	"DIFERENCIA DE TONO",
	"CASCO DESCUADRADO",
	"CASCO QUEBRADO",
	"PATAS FLOJAS",
	"TELA SUCIA",
	"TELA MANCHADA",
	"TELA ROTA",
	"OTRO",
}

// Catalog vocabulario de defectos por área.
type Catalog struct {
	byArea map[string][]string
	index  map[string]map[string]struct{}
}

// NewCatalog construye un catálogo a partir de un mapa área → defectos.
func NewCatalog(byArea map[string][]string) *Catalog {
	c := &Catalog{
		byArea: make(map[string][]string, len(byArea)),
		index:  make(map[string]map[string]struct{}, len(byArea)),
	}
	for area, tags := range byArea {
		c.byArea[area] = append([]string(nil), tags...)
		set := make(map[string]struct{}, len(tags))
		for _, t := range tags {
			set[t] = struct{}{}
		}
		c.index[area] = set
	}
	return c
}

// Default catálogo de la planta (sillas y salas).
func Default() *Catalog {
	return NewCatalog(map[string][]string{
		AreaSillas: sillas,
		AreaSalas:  salas,
	})
}

// Areas áreas conocidas en orden alfabético.
func (c *Catalog) Areas() []string {
	out := make([]string, 0, len(c.byArea))
	for a := range c.byArea {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// HasArea indica si el área existe.
func (c *Catalog) HasArea(area string) bool {
	_, ok := c.byArea[area]
	return ok
}

// Defects vocabulario del área (copia), nil si el área no existe.
func (c *Catalog) Defects(area string) []string {
	tags, ok := c.byArea[area]
	if !ok {
		return nil
	}
	return append([]string(nil), tags...)
}

// Allows indica si tag pertenece al vocabulario de area.
func (c *Catalog) Allows(area, tag string) bool {
	_, ok := c.index[area][tag]
	return ok
}
