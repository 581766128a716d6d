package provenance

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	v1 "github.com/agritrace-lab/agritrace/internal/api/v1"
)

// Profiles declares the known optional payload keys per actor role.
// The payload schema is intentionally open: only the "action" key is
// ever enforced, and keys outside a role's profile still pass through
// opaquely. Profiles exist so operators can see, in logs, when a
// client starts sending fields nobody declared.
type Profiles struct {
	known map[v1.ActorRole]map[string]struct{}
}

type profilesFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// DefaultProfiles returns the built-in role profiles matching the
// conventional dashboard payloads.
func DefaultProfiles() *Profiles {
	return newProfiles(map[string][]string{
		string(v1.RoleProducer): {"crop", "variety"},
		string(v1.RoleCarrier):  {"destination", "carrier"},
		string(v1.RoleRetailer): {"shelfLocation"},
	})
}

// LoadProfiles reads role profiles from a YAML file of the form:
//
//	roles:
//	  CARRIER: [destination, carrier]
//	  RETAILER: [shelfLocation]
//
// An empty path returns the built-in defaults.
func LoadProfiles(path string) (*Profiles, error) {
	if path == "" {
		return DefaultProfiles(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read role profiles: %w", err)
	}

	var f profilesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse role profiles: %w", err)
	}

	return newProfiles(f.Roles), nil
}

func newProfiles(roles map[string][]string) *Profiles {
	known := make(map[v1.ActorRole]map[string]struct{}, len(roles))
	for role, keys := range roles {
		set := make(map[string]struct{}, len(keys))
		for _, k := range keys {
			set[k] = struct{}{}
		}
		known[v1.ActorRole(role)] = set
	}
	return &Profiles{known: known}
}

// UnknownKeys returns the payload keys that are neither the action
// descriptor nor declared in the role's profile. Advisory only; the
// caller never rejects based on this.
func (p *Profiles) UnknownKeys(role v1.ActorRole, payload map[string]interface{}) []string {
	declared := p.known[role]

	var unknown []string
	for k := range payload {
		if k == v1.PayloadActionKey {
			continue
		}
		if _, ok := declared[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	return unknown
}
