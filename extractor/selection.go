package extractor

import (
	"net/url"
	"strings"

	"price-hunter/internal/types"
)

// ParseSelection reads store flags from query parameters.
// kabum (also accepted as ml) is on unless set to "false";
// google and mercadolivre are off unless set to "true".
func ParseSelection(values url.Values) types.SourceSelection {
	return types.SourceSelection{
		SourceKabum:        values.Get("kabum") != "false" && values.Get("ml") != "false",
		SourceGoogle:       values.Get("google") == "true",
		SourceMercadoLivre: values.Get("mercadolivre") == "true",
	}
}

// ParseStoreList enables every store named in a comma separated list
func ParseStoreList(list string) types.SourceSelection {
	selection := types.SourceSelection{}
	for _, name := range strings.Split(list, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			selection[name] = true
		}
	}
	return selection
}
