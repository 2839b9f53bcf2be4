package i18n

import "testing"

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	if got := GetCatalog("missing-locale"); got != base {
		t.Fatal("expected fallback to en-US catalog")
	}
	if got := GetCatalog(""); got != base {
		t.Fatal("expected empty locale to resolve to en-US")
	}
}

func TestGetCatalogMatchesRegionalVariant(t *testing.T) {
	cat := GetCatalog("es-MX")
	if cat.Locale() != "es-ES" {
		t.Fatalf("expected es-ES match, got %s", cat.Locale())
	}
}

func TestFormatRendersMetadata(t *testing.T) {
	cat := GetCatalog("en-US")
	got := cat.Format("INSUFFICIENT_ACTION_POINTS", map[string]string{"Required": "2", "Available": "1"})
	want := "Not enough action points: need 2, have 1"
	if got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
}

func TestFormatFallsBackToBaseMessage(t *testing.T) {
	cat := GetCatalog("es-ES")
	got := cat.Format("MAP_NOT_SET", nil)
	if got != "No map has been set for this session" {
		t.Fatalf("expected en-US fallback, got %q", got)
	}
	if got := cat.Format("NOT_HOST", nil); got != "Solo el anfitrión puede hacer eso" {
		t.Fatalf("expected spanish message, got %q", got)
	}
}

func TestFormatUnknownCode(t *testing.T) {
	cat := GetCatalog("en-US")
	if got := cat.Format("NOPE", nil); got != "NOPE" {
		t.Fatalf("expected code fallback, got %q", got)
	}
}

func TestFormatMissingMetadataRendersEmpty(t *testing.T) {
	cat := GetCatalog("en-US")
	if got := cat.Format("NOT_OWNER", nil); got != "You do not control " {
		t.Fatalf("unexpected render %q", got)
	}
}
