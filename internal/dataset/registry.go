package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// RegistryFile is the registry file name inside the output directory.
const RegistryFile = "forms.json"

// ErrNoSnippets is returned when no saved snippet can be sampled.
var ErrNoSnippets = errors.New("no snippets to sample")

// snippetName matches <label>_<scripter>_<page>_<row>_<col>.png
var snippetName = regexp.MustCompile(`^([A-Za-z]+)_(\d+)_(\d+)_(\d+)_(\d+)\.png$`)

// Registry maps form numbers to the scan they came from. It is safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	forms map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{forms: make(map[string]string)}
}

// Put records the source path of form id. Later calls overwrite earlier ones.
func (r *Registry) Put(id, path string) {
	r.mu.Lock()
	r.forms[id] = path
	r.mu.Unlock()
}

// Path returns the source path of form id.
func (r *Registry) Path(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.forms[id]
	return p, ok
}

// IDs returns the registered form numbers in order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.forms))
	for id := range r.forms {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered forms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forms)
}

// Save writes the registry as JSON.
func (r *Registry) Save(path string) error {
	r.mu.RLock()
	data, err := json.MarshalIndent(r.forms, "", "  ")
	r.mu.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadRegistry reads a registry written by Save.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	if err := json.Unmarshal(data, &r.forms); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if r.forms == nil {
		r.forms = make(map[string]string)
	}
	return r, nil
}

// Sample is a snippet picked for manual review.
type Sample struct {
	FormID     string // Form number
	SourcePath string // Scan the form came from
	Snippet    string // Path of the snippet image
	Label      string // Label encoded in the file name
	Row, Col   int
}

// Sidecar returns the path of the snippet's text file.
func (s Sample) Sidecar() string {
	return strings.TrimSuffix(s.Snippet, filepath.Ext(s.Snippet)) + ".txt"
}

// RandomSample picks a random registered form that has snippets in outDir,
// then a random snippet of that form.
func RandomSample(outDir string, reg *Registry, rng *rand.Rand) (Sample, error) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return Sample{}, err
	}

	byForm := make(map[string][]Sample)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := snippetName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		id := m[2] + m[3]
		src, ok := reg.Path(id)
		if !ok {
			continue
		}
		row, _ := strconv.Atoi(m[4])
		col, _ := strconv.Atoi(m[5])
		byForm[id] = append(byForm[id], Sample{
			FormID:     id,
			SourcePath: src,
			Snippet:    filepath.Join(outDir, e.Name()),
			Label:      m[1],
			Row:        row,
			Col:        col,
		})
	}
	if len(byForm) == 0 {
		return Sample{}, ErrNoSnippets
	}

	ids := make([]string, 0, len(byForm))
	for id := range byForm {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	snips := byForm[ids[rng.Intn(len(ids))]]
	return snips[rng.Intn(len(snips))], nil
}
