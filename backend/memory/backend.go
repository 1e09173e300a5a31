package memory

import (
	"context"
	"sync"

	"github.com/tidwall/btree"
	"github.com/xirelogy/magpie-s3-filesystem/backend"
)

// DefaultPartSize is the payload size above which uploads are split into parts.
const DefaultPartSize = 5 * 1024 * 1024

// PartFault is consulted before each multipart part is stored.
// Returning an error aborts the upload.
type PartFault func(uploadID string, part int) error

// MemoryBackend keeps objects in one ordered B-tree per bucket.
// Prefix listings become ordered range scans over the tree.
type MemoryBackend struct {
	mu sync.RWMutex

	buckets map[string]*btree.Map[string, *memoryObject]
	uploads map[string]*multipartUpload

	partSize  int
	partFault PartFault
	closed    bool
}

type MemoryOption func(*MemoryBackend)

// WithPartSize changes the multipart threshold and part size.
func WithPartSize(size int) MemoryOption {
	return func(mb *MemoryBackend) {
		if size > 0 {
			mb.partSize = size
		}
	}
}

// WithPartFault installs a hook that can fail individual multipart parts.
func WithPartFault(fault PartFault) MemoryOption {
	return func(mb *MemoryBackend) {
		mb.partFault = fault
	}
}

func NewMemoryBackend(opts ...MemoryOption) *MemoryBackend {
	mb := &MemoryBackend{
		buckets:  make(map[string]*btree.Map[string, *memoryObject]),
		uploads:  make(map[string]*multipartUpload),
		partSize: DefaultPartSize,
	}

	for _, opt := range opts {
		opt(mb)
	}

	return mb
}

// Name returns the identifier name defined for this backend
func (*MemoryBackend) Name() string {
	return "memory"
}

// Open is part of the lifecycle behaviour and gets called before the first request.
func (mb *MemoryBackend) Open(ctx context.Context) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	mb.closed = false
	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (mb *MemoryBackend) Close(ctx context.Context) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	for name, tree := range mb.buckets {
		tree.Clear()
		delete(mb.buckets, name)
	}
	for id := range mb.uploads {
		delete(mb.uploads, id)
	}

	mb.closed = true
	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (mb *MemoryBackend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityObjectStorage,
			backend.CapabilityMultipart,
			backend.CapabilityBulkDelete,
		},
	}
}

// Len returns the number of objects stored in bucket.
func (mb *MemoryBackend) Len(bucket string) int {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	tree, exists := mb.buckets[bucket]
	if !exists {
		return 0
	}

	return tree.Len()
}

// bucket returns the tree for name, creating it when create is set.
// Must be called with lock held.
func (mb *MemoryBackend) bucket(name string, create bool) *btree.Map[string, *memoryObject] {
	tree, exists := mb.buckets[name]
	if !exists && create {
		tree = btree.NewMap[string, *memoryObject](0)
		mb.buckets[name] = tree
	}

	return tree
}

var _ backend.ObjectClient = (*MemoryBackend)(nil)
