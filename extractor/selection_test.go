package extractor

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"price-hunter/internal/types"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  types.SourceSelection
	}{
		{
			name:  "defaults",
			query: "query=iphone",
			want:  types.SourceSelection{SourceKabum: true, SourceGoogle: false, SourceMercadoLivre: false},
		},
		{
			name:  "all on",
			query: "google=true&mercadolivre=true",
			want:  types.SourceSelection{SourceKabum: true, SourceGoogle: true, SourceMercadoLivre: true},
		},
		{
			name:  "kabum off through ml flag",
			query: "ml=false&google=true",
			want:  types.SourceSelection{SourceKabum: false, SourceGoogle: true, SourceMercadoLivre: false},
		},
		{
			name:  "kabum off",
			query: "kabum=false",
			want:  types.SourceSelection{SourceKabum: false, SourceGoogle: false, SourceMercadoLivre: false},
		},
		{
			name:  "only exact true enables google",
			query: "google=1&mercadolivre=TRUE",
			want:  types.SourceSelection{SourceKabum: true, SourceGoogle: false, SourceMercadoLivre: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ParseSelection(values))
		})
	}
}

func TestParseStoreList(t *testing.T) {
	assert.Equal(t, types.SourceSelection{SourceKabum: true, SourceGoogle: true}, ParseStoreList(" Kabum, google ,,"))
	assert.Empty(t, ParseStoreList(""))
}
