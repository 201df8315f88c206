package normalizer

import (
	"strings"

	"procfeed/pkg/utils"
)

// catalogKeywords mark electronic-catalog and framework-agreement purchases, in
// normalized form. The bare catalog stems also match abbreviated method text
// such as "Compra por Catálogo".
var catalogKeywords = []string{
	"CATALOGO",
	"CATALOGUE",
	"CATALOG",
	"ACUERDO MARCO",
	"ACUERDOS MARCO",
	"CONVENIO MARCO",
	"FRAMEWORK AGREEMENT",
}

// IsFrameworkCatalogPurchase reports whether either procurement-method text names an
// electronic catalog or framework agreement. Empty input is not a catalog purchase.
func IsFrameworkCatalogPurchase(methodDetails, method string) bool {
	for _, text := range []string{methodDetails, method} {
		normalized := utils.FoldSeparators(utils.NormalizeKey(text))
		if normalized == "" {
			continue
		}

		for _, keyword := range catalogKeywords {
			if strings.Contains(normalized, keyword) {
				return true
			}
		}
	}

	return false
}
