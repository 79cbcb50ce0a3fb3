package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestJoin tests suffix placement for URLs and paths
func TestJoin(t *testing.T) {
	tests := []struct {
		location, suffix, expected string
	}{
		{"https://example.com/data/roads", "shp", "https://example.com/data/roads.shp"},
		{"https://example.com/data/roads?token=abc", "dbf", "https://example.com/data/roads.dbf?token=abc"},
		{"https://example.com/data/roads.zip", "", "https://example.com/data/roads.zip"},
		{"/tmp/data/roads", "prj", "/tmp/data/roads.prj"},
		{"file:///tmp/data/roads", "cpg", "file:///tmp/data/roads.cpg"},
	}

	for _, tt := range tests {
		if got := Join(tt.location, tt.suffix); got != tt.expected {
			t.Errorf("Join(%q, %q) = %q, want %q", tt.location, tt.suffix, got, tt.expected)
		}
	}
}

// TestBase tests trailing segment extraction
func TestBase(t *testing.T) {
	tests := []struct {
		location, expected string
	}{
		{"https://example.com/data/roads.ZIP?x=1", "roads.ZIP"},
		{"/tmp/data/roads.zip", "roads.zip"},
		{"file:///tmp/data/roads", "roads"},
		{"roads", "roads"},
	}

	for _, tt := range tests {
		if got := Base(tt.location); got != tt.expected {
			t.Errorf("Base(%q) = %q, want %q", tt.location, got, tt.expected)
		}
	}
}

// TestFetchHTTP tests success and status errors
func TestFetchHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/roads.shp" {
			_, _ = w.Write([]byte("geometry"))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)

	data, err := client.Fetch(context.Background(), server.URL+"/roads", "shp")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "geometry" {
		t.Errorf("Unexpected body %q", data)
	}

	_, err = client.Fetch(context.Background(), server.URL+"/roads", "prj")
	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusNotFound || !fetchErr.NotFound() {
		t.Errorf("Expected 404, got %d", fetchErr.StatusCode)
	}
}

// TestFetchFile tests filesystem reads
func TestFetchFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "roads.dbf"), []byte("table"), 0o644); err != nil {
		t.Fatal(err)
	}

	client := NewClient(0)
	data, err := client.Fetch(context.Background(), filepath.Join(dir, "roads"), "dbf")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "table" {
		t.Errorf("Unexpected content %q", data)
	}

	_, err = client.Fetch(context.Background(), filepath.Join(dir, "roads"), "cpg")
	var fetchErr *Error
	if !errors.As(err, &fetchErr) || !fetchErr.NotFound() {
		t.Errorf("Expected not-found *Error, got %v", err)
	}
}
