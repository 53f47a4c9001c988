package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"carcatalog/content/internal/domain"
)

func newContentServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.Query()

		switch {
		case r.URL.Path == "/cdn/stories" && q.Get("with_tag") == "toyota":
			_, _ = w.Write([]byte(`{"stories": [
				{"id": 10, "name": "Toyota", "full_slug": "brands/toyota/", "tag_list": ["toyota", "featured"]}
			]}`))
		case r.URL.Path == "/cdn/stories" && q.Get("starts_with") == "brands/":
			_, _ = w.Write([]byte(`{"stories": [
				{"id": 10, "slug": "toyota", "full_slug": "brands/toyota/", "is_startpage": true}
			]}`))
		case r.URL.Path == "/cdn/stories" && q.Get("starts_with") == "brands/toyota/":
			_, _ = w.Write([]byte(`{"stories": [
				{"id": 101, "name": "Corolla", "slug": "corolla", "full_slug": "brands/toyota/corolla",
				 "content": {"foto": "//img.example.com/corolla.jpg", "year": "2023 model", "price": "25000"}},
				{"id": 102, "name": "Camry", "slug": "camry", "full_slug": "brands/toyota/camry", "content": {}}
			]}`))
		case r.URL.Path == "/cdn/stories/brands/toyota":
			_, _ = w.Write([]byte(`{"story": {"id": 10, "slug": "toyota", "full_slug": "brands/toyota/", "is_startpage": true,
				"content": {"name": "Toyota", "country": "Japan"}}}`))
		case r.URL.Path == "/cdn/stories/brands/toyota/corolla":
			_, _ = w.Write([]byte(`{"story": {"id": 101, "name": "Corolla", "slug": "corolla", "full_slug": "brands/toyota/corolla",
				"content": {"foto": "//img.example.com/corolla.jpg", "fotos": [{"filename": "//img.example.com/rear.jpg"}]}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "not found"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeTestConfig(t *testing.T, baseURL string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `storyblok:
  base_url: "` + baseURL + `"
  token: "test-token"
  max_retries: 0
  max_requests_per_second: 0
  timeout: 5
log:
  level: error
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	srv := newContentServer(t)
	cfgPath := writeTestConfig(t, srv.URL)

	root, cc := newRootCommand()
	defer cc.close()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBrandsCommand(t *testing.T) {
	out, err := runCLI(t, "brands")
	if err != nil {
		t.Fatalf("brands error = %v", err)
	}
	for _, want := range []string{"toyota", "Toyota", "Japan"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBrandsCommandJSON(t *testing.T) {
	out, err := runCLI(t, "--json", "brands")
	if err != nil {
		t.Fatalf("brands error = %v", err)
	}

	var brands []domain.Brand
	if err := json.Unmarshal([]byte(out), &brands); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(brands) != 1 || len(brands[0].Models) != 2 {
		t.Fatalf("brands = %+v", brands)
	}
	m := brands[0].Models[0]
	if m.ImageURL != "https://img.example.com/corolla.jpg" || m.Year != "2023" || m.Price == nil || *m.Price != "25000" {
		t.Errorf("model = %+v", m)
	}
}

func TestModelsCommandUnknownBrand(t *testing.T) {
	_, err := runCLI(t, "models", "ford")
	if !errors.Is(err, errNotFound) {
		t.Errorf("models ford error = %v, want errNotFound", err)
	}
}

func TestModelsCommandLive(t *testing.T) {
	out, err := runCLI(t, "models", "--live", "toyota")
	if err != nil {
		t.Fatalf("models --live error = %v", err)
	}
	if !strings.Contains(out, "corolla") || !strings.Contains(out, "camry") {
		t.Errorf("output missing models:\n%s", out)
	}
}

func TestModelCommandShowsGallery(t *testing.T) {
	out, err := runCLI(t, "model", "--live", "toyota", "corolla")
	if err != nil {
		t.Fatalf("model error = %v", err)
	}
	for _, want := range []string{"https://img.example.com/corolla.jpg", "https://img.example.com/rear.jpg", "Corolla main image"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTagsCommand(t *testing.T) {
	out, err := runCLI(t, "tags", "toyota")
	if err != nil {
		t.Fatalf("tags error = %v", err)
	}
	if !strings.Contains(out, "toyota, featured") {
		t.Errorf("output missing tags:\n%s", out)
	}
}

func TestCategoriesCommand(t *testing.T) {
	out, err := runCLI(t, "categories")
	if err != nil {
		t.Fatalf("categories error = %v", err)
	}
	if !strings.Contains(out, "Sports Car") {
		t.Errorf("output missing default categories:\n%s", out)
	}
}

func TestWatchRequiresRedis(t *testing.T) {
	if _, err := runCLI(t, "watch", "--status"); !errors.Is(err, errRedisRequired) {
		t.Errorf("watch --status error = %v, want errRedisRequired", err)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, []columnAlignment{alignRight})
	if !strings.Contains(out, "only") || !strings.Contains(out, "A") {
		t.Errorf("renderTable() = %q", out)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Error("renderTable() with no headers should be empty")
	}
}
