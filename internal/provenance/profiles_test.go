package provenance

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	v1 "github.com/agritrace-lab/agritrace/internal/api/v1"
)

func TestDefaultProfiles_UnknownKeys(t *testing.T) {
	p := DefaultProfiles()

	unknown := p.UnknownKeys(v1.RoleCarrier, map[string]interface{}{
		"action":      "pickup",
		"destination": "Depot 7",
		"carrier":     "Fast-Track",
		"truck":       "B-1729-XY",
	})
	if len(unknown) != 1 || unknown[0] != "truck" {
		t.Errorf("UnknownKeys() = %v, want [truck]", unknown)
	}

	// The action key is never reported as unknown, for any role.
	if got := p.UnknownKeys(v1.RoleProducer, map[string]interface{}{"action": "registration"}); len(got) != 0 {
		t.Errorf("UnknownKeys() = %v, want none", got)
	}
}

func TestLoadProfiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	content := `
roles:
  CARRIER: [destination, carrier, temperature]
  RETAILER: [shelfLocation]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("LoadProfiles() error = %v", err)
	}

	unknown := p.UnknownKeys(v1.RoleCarrier, map[string]interface{}{
		"action":      "pickup",
		"temperature": "4C",
		"humidity":    "60%",
	})
	sort.Strings(unknown)
	if len(unknown) != 1 || unknown[0] != "humidity" {
		t.Errorf("UnknownKeys() = %v, want [humidity]", unknown)
	}

	// A role absent from the file has no declared keys at all.
	unknown = p.UnknownKeys(v1.RoleProducer, map[string]interface{}{"action": "registration", "crop": "Coffee"})
	if len(unknown) != 1 || unknown[0] != "crop" {
		t.Errorf("UnknownKeys() = %v, want [crop]", unknown)
	}
}

func TestLoadProfiles_EmptyPathUsesDefaults(t *testing.T) {
	p, err := LoadProfiles("")
	if err != nil {
		t.Fatalf("LoadProfiles(\"\") error = %v", err)
	}
	if got := p.UnknownKeys(v1.RoleRetailer, map[string]interface{}{"shelfLocation": "A3"}); len(got) != 0 {
		t.Errorf("UnknownKeys() = %v, want none for default retailer profile", got)
	}
}

func TestLoadProfiles_MissingFile(t *testing.T) {
	if _, err := LoadProfiles("/nonexistent/profiles.yaml"); err == nil {
		t.Error("LoadProfiles() should fail for a missing file")
	}
}
