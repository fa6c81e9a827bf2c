package store

import (
	"path/filepath"
	"time"

	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/model"
)

// AspectDocument is the contents of aspects.yaml.
type AspectDocument struct {
	Aspects     []model.Aspect           `yaml:"aspects,omitempty"`
	Annotations []model.AspectAnnotation `yaml:"annotations,omitempty"`
}

// AspectStore owns aspects.yaml.
type AspectStore struct {
	path string
	doc  AspectDocument
}

// OpenAspectStore loads aspects.yaml from dataDir. If the document is empty
// (file absent, or present but with no aspects), the ten built-in aspects
// (spec section 9) are seeded into the in-memory document; callers that
// want this persisted must call Save.
func OpenAspectStore(dataDir string) (*AspectStore, error) {
	s := &AspectStore{path: filepath.Join(dataDir, "aspects.yaml")}
	if err := loadDocument(s.path, &s.doc); err != nil {
		return nil, err
	}
	if len(s.doc.Aspects) == 0 {
		s.doc.Aspects = seedBuiltInAspects()
	}
	return s, nil
}

func seedBuiltInAspects() []model.Aspect {
	out := make([]model.Aspect, 0, len(model.BuiltInAspects))
	for _, name := range model.BuiltInAspects {
		out = append(out, model.Aspect{
			ID:      ids.AspectID(name),
			Name:    name,
			BuiltIn: true,
		})
	}
	return out
}

// Save persists the current document atomically.
func (s *AspectStore) Save() error {
	return saveDocument(s.path, &s.doc)
}

// Document returns a copy of the underlying document.
func (s *AspectStore) Document() AspectDocument {
	return s.doc
}

// --- Aspects ---

// GetAspect returns the aspect with id, or false if not found.
func (s *AspectStore) GetAspect(id string) (model.Aspect, bool) {
	for _, a := range s.doc.Aspects {
		if a.ID == id {
			return a, true
		}
	}
	return model.Aspect{}, false
}

// ListAspects returns all aspects.
func (s *AspectStore) ListAspects() []model.Aspect {
	return append([]model.Aspect(nil), s.doc.Aspects...)
}

// --- Annotations ---

// Tag creates or replaces the annotation for (target, aspectID): per I3,
// only the most recent annotation for a given (target, aspect_id) pair is
// kept. CreatedAt should be set by the caller before calling Tag.
func (s *AspectStore) Tag(ann model.AspectAnnotation) {
	ann.ID = ids.AnnotationID(ann.Target, ann.AspectID)
	if ann.CreatedAt.IsZero() {
		ann.CreatedAt = time.Now().UTC()
	}
	for i, existing := range s.doc.Annotations {
		if existing.Target == ann.Target && existing.AspectID == ann.AspectID {
			s.doc.Annotations[i] = ann
			return
		}
	}
	s.doc.Annotations = append(s.doc.Annotations, ann)
}

// RemoveAnnotation removes the annotation matching (target, aspectID).
func (s *AspectStore) RemoveAnnotation(target, aspectID string) bool {
	for i, a := range s.doc.Annotations {
		if a.Target == target && a.AspectID == aspectID {
			s.doc.Annotations = append(s.doc.Annotations[:i], s.doc.Annotations[i+1:]...)
			return true
		}
	}
	return false
}

// AnnotationsFor returns all annotations whose Target equals target.
func (s *AspectStore) AnnotationsFor(target string) []model.AspectAnnotation {
	var out []model.AspectAnnotation
	for _, a := range s.doc.Annotations {
		if a.Target == target {
			out = append(out, a)
		}
	}
	return out
}

// ListAnnotations returns all annotations.
func (s *AspectStore) ListAnnotations() []model.AspectAnnotation {
	return append([]model.AspectAnnotation(nil), s.doc.Annotations...)
}
