package store

import (
	"path/filepath"

	"github.com/hyperpolymath/reposystem/pkg/apperr"
	"github.com/hyperpolymath/reposystem/pkg/model"
)

// SlotDocument is the contents of slots.yaml.
type SlotDocument struct {
	Slots     []model.Slot        `yaml:"slots,omitempty"`
	Providers []model.Provider    `yaml:"providers,omitempty"`
	Bindings  []model.SlotBinding `yaml:"bindings,omitempty"`
}

// SlotStore owns slots.yaml.
type SlotStore struct {
	path string
	doc  SlotDocument
}

// OpenSlotStore loads slots.yaml from dataDir (empty if absent).
func OpenSlotStore(dataDir string) (*SlotStore, error) {
	s := &SlotStore{path: filepath.Join(dataDir, "slots.yaml")}
	if err := loadDocument(s.path, &s.doc); err != nil {
		return nil, err
	}
	return s, nil
}

// Save persists the current document atomically.
func (s *SlotStore) Save() error {
	return saveDocument(s.path, &s.doc)
}

// Document returns a copy of the underlying document.
func (s *SlotStore) Document() SlotDocument {
	return s.doc
}

// --- Slots ---

// CreateSlot adds slot, failing with AlreadyExists if its id is taken.
func (s *SlotStore) CreateSlot(slot model.Slot) error {
	if _, ok := s.GetSlot(slot.ID); ok {
		return apperr.New(apperr.AlreadyExists, "slot already exists: "+slot.ID)
	}
	s.doc.Slots = append(s.doc.Slots, slot)
	return nil
}

// GetSlot returns the slot with id, or false if not found.
func (s *SlotStore) GetSlot(id string) (model.Slot, bool) {
	for _, sl := range s.doc.Slots {
		if sl.ID == id {
			return sl, true
		}
	}
	return model.Slot{}, false
}

// RemoveSlot deletes the slot with id.
func (s *SlotStore) RemoveSlot(id string) bool {
	for i, sl := range s.doc.Slots {
		if sl.ID == id {
			s.doc.Slots = append(s.doc.Slots[:i], s.doc.Slots[i+1:]...)
			return true
		}
	}
	return false
}

// ListSlots returns all slots.
func (s *SlotStore) ListSlots() []model.Slot {
	return append([]model.Slot(nil), s.doc.Slots...)
}

// --- Providers ---

// CreateProvider adds provider, failing with AlreadyExists if its id is taken.
func (s *SlotStore) CreateProvider(p model.Provider) error {
	if _, ok := s.GetProvider(p.ID); ok {
		return apperr.New(apperr.AlreadyExists, "provider already exists: "+p.ID)
	}
	s.doc.Providers = append(s.doc.Providers, p)
	return nil
}

// GetProvider returns the provider with id, or false if not found.
func (s *SlotStore) GetProvider(id string) (model.Provider, bool) {
	for _, p := range s.doc.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return model.Provider{}, false
}

// RemoveProvider deletes the provider with id.
func (s *SlotStore) RemoveProvider(id string) bool {
	for i, p := range s.doc.Providers {
		if p.ID == id {
			s.doc.Providers = append(s.doc.Providers[:i], s.doc.Providers[i+1:]...)
			return true
		}
	}
	return false
}

// ListProviders returns all providers.
func (s *SlotStore) ListProviders() []model.Provider {
	return append([]model.Provider(nil), s.doc.Providers...)
}

// ProvidersForSlot returns all providers whose SlotID equals slotID.
func (s *SlotStore) ProvidersForSlot(slotID string) []model.Provider {
	var out []model.Provider
	for _, p := range s.doc.Providers {
		if p.SlotID == slotID {
			out = append(out, p)
		}
	}
	return out
}

// --- Bindings ---

// CreateBinding adds binding, failing with AlreadyExists if a binding
// already exists for (ConsumerID, SlotID) (I4/§3 uniqueness).
func (s *SlotStore) CreateBinding(b model.SlotBinding) error {
	if _, ok := s.BindingFor(b.ConsumerID, b.SlotID); ok {
		return apperr.New(apperr.AlreadyExists,
			"binding already exists for consumer "+b.ConsumerID+" slot "+b.SlotID)
	}
	s.doc.Bindings = append(s.doc.Bindings, b)
	return nil
}

// GetBinding returns the binding with id, or false if not found.
func (s *SlotStore) GetBinding(id string) (model.SlotBinding, bool) {
	for _, b := range s.doc.Bindings {
		if b.ID == id {
			return b, true
		}
	}
	return model.SlotBinding{}, false
}

// BindingFor returns the binding for (consumerID, slotID), or false.
func (s *SlotStore) BindingFor(consumerID, slotID string) (model.SlotBinding, bool) {
	for _, b := range s.doc.Bindings {
		if b.ConsumerID == consumerID && b.SlotID == slotID {
			return b, true
		}
	}
	return model.SlotBinding{}, false
}

// RemoveBindingByID removes the binding with id.
func (s *SlotStore) RemoveBindingByID(id string) bool {
	for i, b := range s.doc.Bindings {
		if b.ID == id {
			s.doc.Bindings = append(s.doc.Bindings[:i], s.doc.Bindings[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveBindingFor removes the binding for (consumerID, slotID).
func (s *SlotStore) RemoveBindingFor(consumerID, slotID string) bool {
	for i, b := range s.doc.Bindings {
		if b.ConsumerID == consumerID && b.SlotID == slotID {
			s.doc.Bindings = append(s.doc.Bindings[:i], s.doc.Bindings[i+1:]...)
			return true
		}
	}
	return false
}

// ListBindings returns all bindings.
func (s *SlotStore) ListBindings() []model.SlotBinding {
	return append([]model.SlotBinding(nil), s.doc.Bindings...)
}

// BindingsForSlot returns all bindings whose SlotID equals slotID.
func (s *SlotStore) BindingsForSlot(slotID string) []model.SlotBinding {
	var out []model.SlotBinding
	for _, b := range s.doc.Bindings {
		if b.SlotID == slotID {
			out = append(out, b)
		}
	}
	return out
}
