package inventory

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/barratec/barra-api/internal/domain/entity"
)

// NormalizeName normaliza un nombre libre para comparación: quita
// diacríticos (NFD + remoción de marcas), pasa a minúsculas y colapsa
// espacios.
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// ProductMatcher resuelve el nombre libre de un ingrediente a un producto
// del catálogo. Interfaz nombrada para poder cambiar la estrategia de
// matching sin tocar el algoritmo de consumo.
type ProductMatcher interface {
	Match(name string) (*entity.Product, bool)
}

// NormalizedMatcher implementa la estrategia en dos fases: match exacto por
// nombre normalizado y, si falla, contención de substrings en cualquier
// dirección.
type NormalizedMatcher struct {
	products []*entity.Product
	byName   map[string]*entity.Product
}

var _ ProductMatcher = (*NormalizedMatcher)(nil)

// NewNormalizedMatcher construye el matcher a partir del catálogo precargado.
func NewNormalizedMatcher(products []*entity.Product) *NormalizedMatcher {
	byName := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		byName[NormalizeName(p.Name)] = p
	}
	return &NormalizedMatcher{products: products, byName: byName}
}

// Match busca primero el nombre exacto normalizado y luego por contención.
func (m *NormalizedMatcher) Match(name string) (*entity.Product, bool) {
	key := NormalizeName(name)
	if key == "" {
		return nil, false
	}
	if p, ok := m.byName[key]; ok {
		return p, true
	}
	for _, p := range m.products {
		pn := NormalizeName(p.Name)
		if pn == "" {
			continue
		}
		if strings.Contains(pn, key) || strings.Contains(key, pn) {
			return p, true
		}
	}
	return nil, false
}
