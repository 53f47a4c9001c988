package domain

import (
	"encoding/json"
	"testing"
)

func decodeEntry(t *testing.T, payload string) Entry {
	t.Helper()
	var e Entry
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		t.Fatalf("unmarshal entry: %v", err)
	}
	return e
}

func TestContentModelDefaults(t *testing.T) {
	e := decodeEntry(t, `{"id": 7, "name": "Corolla", "slug": "corolla", "content": {}}`)

	m := e.Content.Model()
	if m.ModelName != "" {
		t.Errorf("ModelName = %q, want empty", m.ModelName)
	}
	if m.Specifications == nil || len(m.Specifications) != 0 {
		t.Errorf("Specifications = %v, want empty mapping", m.Specifications)
	}
	if m.Features == nil || len(m.Features) != 0 {
		t.Errorf("Features = %v, want empty sequence", m.Features)
	}
	if m.Price != nil {
		t.Errorf("Price = %v, want nil", *m.Price)
	}
	if len(m.Fotos) != 0 {
		t.Errorf("Fotos = %v, want empty", m.Fotos)
	}
}

func TestContentLenientScalars(t *testing.T) {
	e := decodeEntry(t, `{"content": {
		"modelName": "Camry",
		"year": 2023,
		"price": 30000.5,
		"foto": {"filename": "//img.example.com/camry.jpg", "alt": "front"},
		"fotos": [{"filename": "//img.example.com/a.jpg"}, "//img.example.com/b.jpg", 42],
		"pdf": {"url": "", "cached_url": "https://docs.example.com/camry.pdf"}
	}}`)

	m := e.Content.Model()
	if m.ModelName != "Camry" {
		t.Errorf("ModelName = %q, want Camry", m.ModelName)
	}
	if m.Year != "2023" {
		t.Errorf("Year = %q, want 2023", m.Year)
	}
	if m.Price == nil || *m.Price != "30000.5" {
		t.Errorf("Price = %v, want 30000.5", m.Price)
	}
	if m.Foto.Filename != "//img.example.com/camry.jpg" || m.Foto.Alt != "front" {
		t.Errorf("Foto = %+v", m.Foto)
	}
	if len(m.Fotos) != 3 {
		t.Fatalf("Fotos length = %d, want 3", len(m.Fotos))
	}
	if m.Fotos[1].Filename != "//img.example.com/b.jpg" {
		t.Errorf("Fotos[1] = %+v, want plain string asset", m.Fotos[1])
	}
	if m.Fotos[2].Filename != "" {
		t.Errorf("Fotos[2] = %+v, want empty asset", m.Fotos[2])
	}
	if got := m.PDF.Href(); got != "https://docs.example.com/camry.pdf" {
		t.Errorf("PDF.Href() = %q, want cached url", got)
	}
}

func TestContentNonObject(t *testing.T) {
	for _, payload := range []string{
		`{"content": null}`,
		`{"content": "oops"}`,
		`{"content": [1, 2]}`,
		`{}`,
	} {
		e := decodeEntry(t, payload)
		if e.Content.Raw != nil {
			t.Errorf("%s: Raw = %v, want nil", payload, e.Content.Raw)
		}
		if got := e.Content.Brand().Name; got != "" {
			t.Errorf("%s: Brand().Name = %q, want empty", payload, got)
		}
	}
}

func TestContentBrandPhotoFallback(t *testing.T) {
	e := decodeEntry(t, `{"content": {"name": "Toyota", "foto": "//img.example.com/toyota.png"}}`)

	b := e.Content.Brand()
	if b.Photo.Filename != "//img.example.com/toyota.png" {
		t.Errorf("Photo = %+v, want foto fallback", b.Photo)
	}
}

func TestContentModelNameFallback(t *testing.T) {
	e := decodeEntry(t, `{"content": {"name": "RAV4"}}`)
	if got := e.Content.Model().ModelName; got != "RAV4" {
		t.Errorf("ModelName = %q, want RAV4", got)
	}
}

func TestContentRoundTripKeepsRaw(t *testing.T) {
	e := decodeEntry(t, `{"content": {"component": "model", "custom": {"a": 1}}}`)

	out, err := json.Marshal(e.Content)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back["component"] != "model" {
		t.Errorf("component = %v, want model", back["component"])
	}
}
