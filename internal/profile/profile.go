package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/funnelcart/pkg/errors"
)

// DefaultID is the pseudo-profile that means "no profile active"; applying
// it reverts whatever profile is in effect.
const DefaultID = "default"

// Profile remaps base package ids to tier-specific package ids. A profile
// may be a partial mapping: lines without an entry are dropped on apply.
type Profile struct {
	ID              string      `json:"id" validate:"required"`
	Name            string      `json:"name" validate:"required"`
	PackageMappings map[int]int `json:"package_mappings" validate:"required,min=1"`
}

// MappedID returns the substitute package id for a base id, if any.
func (p Profile) MappedID(basePackageID int) (int, bool) {
	mapped, ok := p.PackageMappings[basePackageID]
	return mapped, ok
}

var validate = validator.New()

// Registry holds profiles registered at startup; an id can only be
// registered once.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewRegistry returns an empty profile registry.
func NewRegistry() *Registry {
	return &Registry{profiles: map[string]Profile{}}
}

// Register adds a profile. Re-registering an id or registering the reserved
// default id is an error.
func (r *Registry) Register(p Profile) error {
	if err := validate.Struct(p); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid profile %q", p.ID))
	}
	if p.ID == DefaultID {
		return pkgerrors.New(pkgerrors.CodeValidation, "profile id \"default\" is reserved")
	}
	for base, mapped := range p.PackageMappings {
		if base <= 0 || mapped <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("profile %q: mapping %d -> %d must use positive package ids", p.ID, base, mapped))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[p.ID]; exists {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("profile %q already registered", p.ID))
	}
	r.profiles[p.ID] = p
	return nil
}

// Get resolves a registered profile by id.
func (r *Registry) Get(id string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, pkgerrors.ProfileNotFound(id)
	}
	return p, nil
}

// LoadFile reads a JSON array of profiles and registers each one.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read profiles file")
	}

	// JSON object keys are strings; mappings arrive as {"1": 29}.
	var entries []struct {
		ID              string         `json:"id"`
		Name            string         `json:"name"`
		PackageMappings map[string]int `json:"package_mappings"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode profiles file")
	}

	registry := NewRegistry()
	for _, entry := range entries {
		mappings := make(map[int]int, len(entry.PackageMappings))
		for base, mapped := range entry.PackageMappings {
			var baseID int
			if _, err := fmt.Sscanf(base, "%d", &baseID); err != nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("profile %q: package id %q is not numeric", entry.ID, base))
			}
			mappings[baseID] = mapped
		}
		if err := registry.Register(Profile{ID: entry.ID, Name: entry.Name, PackageMappings: mappings}); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
