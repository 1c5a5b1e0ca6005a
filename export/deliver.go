package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"polyglot/clipboard"
)

// Deliverer hands a document to its destination and reports where it went.
type Deliverer interface {
	Deliver(doc Document) (string, error)
}

// FileDeliverer writes documents into Dir. A write goes to a temporary file
// first and is renamed into place, so a partially written export never
// replaces an earlier one.
type FileDeliverer struct {
	Dir string
}

func (d FileDeliverer) Deliver(doc Document) (string, error) {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+doc.Name+".*")
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(doc.Data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("writing export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("writing export: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	path := filepath.Join(dir, doc.Name)
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("saving export: %w", err)
	}
	return path, nil
}

// ClipboardDeliverer copies the document text to the system clipboard.
type ClipboardDeliverer struct{}

func (ClipboardDeliverer) Deliver(doc Document) (string, error) {
	if err := clipboard.Copy(string(doc.Data)); err != nil {
		return "", fmt.Errorf("copying export to clipboard: %w", err)
	}
	return "clipboard", nil
}

// Multi delivers to every destination in order and stops at the first
// failure. The returned location is the first destination's.
func Multi(ds ...Deliverer) Deliverer { return multi(ds) }

type multi []Deliverer

func (m multi) Deliver(doc Document) (string, error) {
	var first string
	for i, d := range m {
		where, err := d.Deliver(doc)
		if err != nil {
			return first, err
		}
		if i == 0 {
			first = where
		}
	}
	return first, nil
}

// MemoryDeliverer keeps delivered documents in memory. Err, when set, fails
// every delivery.
type MemoryDeliverer struct {
	mu   sync.Mutex
	docs []Document
	Err  error
}

func (m *MemoryDeliverer) Deliver(doc Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.docs = append(m.docs, doc)
	return "memory:" + doc.Name, nil
}

func (m *MemoryDeliverer) Documents() []Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Document(nil), m.docs...)
}
