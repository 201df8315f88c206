package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "accents and case", input: "  Orden Electrónica ", want: "ORDEN ELECTRONICA"},
		{name: "already normalized", input: "MONTO_TOTAL", want: "MONTO_TOTAL"},
		{name: "enye keeps base letter", input: "Año", want: "ANO"},
		{name: "catalog spelling", input: "Catálogos Electrónicos", want: "CATALOGOS ELECTRONICOS"},
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.input))
		})
	}
}

func TestFoldSeparators(t *testing.T) {
	assert.Equal(t, "ORDEN ELECTRONICA", FoldSeparators("ORDEN_ELECTRONICA"))
	assert.Equal(t, "NRO ORDEN", FoldSeparators("NRO.__ORDEN"))
	assert.Equal(t, "A B", FoldSeparators("  A - B "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "ñá", Truncate("ñáé", 2))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "a b", Excerpt("a\n\n b", 10))
	assert.Equal(t, "abc...", Excerpt("abcdef", 3))
}

func TestBuildHeaders(t *testing.T) {
	h := BuildHeaders(map[string]string{"Referer": "https://example.gob.pe/", "Accept": ""})

	assert.Equal(t, DefaultUserAgent, h.Get("User-Agent"))
	assert.Equal(t, DefaultAccept, h.Get("Accept"))
	assert.Equal(t, "https://example.gob.pe/", h.Get("Referer"))
}

func TestHostAllowed(t *testing.T) {
	allowed := []string{"perucompras.gob.pe", "OCDS.example.org"}

	assert.True(t, HostAllowed("https://www.datos.perucompras.gob.pe/api/feed", allowed))
	assert.True(t, HostAllowed("https://ocds.example.org/releases.json", allowed))
	assert.False(t, HostAllowed("https://evil.example.com/perucompras.gob.pe", allowed))
	assert.False(t, HostAllowed("not a url", allowed))
	assert.False(t, HostAllowed("https://perucompras.gob.pe", nil))
}

func TestOriginOf(t *testing.T) {
	assert.Equal(t, "https://a.gob.pe/", OriginOf("https://a.gob.pe/x/y?z=1"))
	assert.Equal(t, "", OriginOf("relative/path"))
}

func TestIsValidURL(t *testing.T) {
	assert.True(t, IsValidURL("https://a.gob.pe/feed.json"))
	assert.False(t, IsValidURL("ftp://a.gob.pe/feed.json"))
	assert.False(t, IsValidURL("/feed.json"))
}
