package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFixture(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.json")
	if err := os.WriteFile(path, []byte(`{"route_no":"A1"}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	data := LoadFixture(t, path)
	if string(data) != `{"route_no":"A1"}` {
		t.Errorf("unexpected fixture content %q", data)
	}
}

func TestLoadFixtureJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.json")
	if err := os.WriteFile(path, []byte(`{"route_no":"A1","frequency_min":15}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	var dest struct {
		RouteNo      string `json:"route_no"`
		FrequencyMin int    `json:"frequency_min"`
	}
	LoadFixtureJSON(t, path, &dest)

	if dest.RouteNo != "A1" || dest.FrequencyMin != 15 {
		t.Errorf("unexpected decode %+v", dest)
	}
}
