package models

import "strings"

// SharingType describes how a resource may be shared within a time range.
type SharingType string

const (
	SharingNotShareable SharingType = "not_shareable"
	SharingCustom       SharingType = "custom"
	SharingUnrestricted SharingType = "unrestricted"
)

// DefaultCustomCapacity applies to custom policies without an explicit capacity.
const DefaultCustomCapacity = 2

// SharingPolicy limits concurrent use of a resource.
type SharingPolicy struct {
	Type               SharingType `json:"type"`
	Capacity           int         `json:"capacity,omitempty"`
	AllowCrossDivision bool        `json:"allowCrossDivision,omitempty"`
}

// Resource is a physical asset with a sharing policy.
type Resource struct {
	Name      string        `json:"name"`
	Sharing   SharingPolicy `json:"sharableWith"`
	Available bool          `json:"available"`
}

// ResourceProperties indexes resources by name.
type ResourceProperties map[string]Resource

// Lookup resolves a resource by case-insensitive name.
func (p ResourceProperties) Lookup(name string) (Resource, bool) {
	if res, ok := p[name]; ok {
		return res, true
	}
	target := strings.ToLower(strings.TrimSpace(name))
	for key, res := range p {
		if strings.ToLower(strings.TrimSpace(key)) == target {
			return res, true
		}
	}
	return Resource{}, false
}
