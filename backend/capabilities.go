package backend

import "slices"

// BackendCapability represents a capability that a backend can provide
type BackendCapability string

const (
	CapabilityObjectStorage BackendCapability = "object_storage"
	CapabilityMultipart     BackendCapability = "multipart"
	CapabilityBulkDelete    BackendCapability = "bulk_delete"
	CapabilityPersistent    BackendCapability = "persistent"
)

// BackendCapabilities describes what a backend supports
type BackendCapabilities struct {
	Capabilities  []BackendCapability `json:"capabilities"`
	MaxObjectSize int64               `json:"max_object_size"`
}

// Contains checks if a capability is supported
func (bc *BackendCapabilities) Contains(cap BackendCapability) bool {
	return slices.Contains(bc.Capabilities, cap)
}
