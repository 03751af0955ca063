package keywords

import "strings"

// Category names a group of risk-signal terms.
type Category string

const (
	CriticalLegal     Category = "CRITICAL_LEGAL"
	CriticalIntegrity Category = "CRITICAL_INTEGRITY"
	CriticalFraud     Category = "CRITICAL_FRAUD"
	GeneralUrgency    Category = "GENERAL_URGENCY"
	GeneralPriceBased Category = "GENERAL_PRICE_BASED"
)

// apparelTerms flags listings that are riding gear, parts or accessories
// rather than an actual vehicle.
var apparelTerms = []string{
	"casco", "guante", "chaqueta", "pantalón", "pantalon", "botas",
	"espaliers", "espalda", "goretex", "chamarra", "bota", "mono",
	"traje", "talla", "alforja", "mochila", "maleta", "chaleco",
	"protector", "protección", "impermeable", "capa de lluvia", "zapatos",
	"herramientas", "candado", "antirrobo", "cubremanos",
	"intercomunicador", "interfono", "bluetooth", "manoplas",
	"puños calefactables", "retrovisor", "aceite", "baúl", "pantalla",
}

// riskGroup pairs a category with its term list. A slice keeps detection
// order stable, which a map would not.
type riskGroup struct {
	category Category
	terms    []string
}

var riskGroups = []riskGroup{
	{CriticalLegal, []string{
		"sin papeles", "sin documentacion", "sin documento", "no papeles",
		"papeles pendientes", "transferencia pendiente",
	}},
	{CriticalIntegrity, []string{
		"sin itv", "no itv", "itv caducada",
		"para piezas", "despiece", "solo piezas",
		"km desconocidos", "kilometraje desconocido",
	}},
	{CriticalFraud, []string{
		"robo", "importacion", "importada",
		"procedencia dudosa", "encontrada",
	}},
	{GeneralUrgency, []string{
		"urgente", "solo hoy", "solo esta semana",
		"rápido", "venta rapida",
	}},
	{GeneralPriceBased, []string{
		"ganga", "muy barato", "chollo", "oferta",
	}},
}

// conditionTerms are "too good for that price" claims used by the condition
// bonus in the risk score.
var conditionTerms = []string{
	"como nueva", "perfecto estado", "muy buen estado", "impecable",
}

// IsApparel reports whether either field contains an apparel/gear term.
// Matching is case-insensitive substring containment.
func IsApparel(title, description string) bool {
	title = strings.ToLower(title)
	description = strings.ToLower(description)
	for _, term := range apparelTerms {
		if strings.Contains(title, term) || strings.Contains(description, term) {
			return true
		}
	}
	return false
}

// DetectRisk scans free text for risk-signal terms. It returns every matched
// term in table order and the set of categories that triggered. Empty input
// matches nothing.
func DetectRisk(text string) ([]string, map[Category]bool) {
	found := []string{}
	categories := make(map[Category]bool)
	if text == "" {
		return found, categories
	}

	lower := strings.ToLower(text)
	for _, group := range riskGroups {
		for _, term := range group.terms {
			if strings.Contains(lower, term) {
				found = append(found, term)
				categories[group.category] = true
			}
		}
	}
	return found, categories
}

// HasConditionClaim reports whether already-lowercased text contains a
// "like new / perfect condition" phrase.
func HasConditionClaim(textLower string) bool {
	for _, term := range conditionTerms {
		if strings.Contains(textLower, term) {
			return true
		}
	}
	return false
}
