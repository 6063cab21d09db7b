// Package state persists list state (selection, expansion, headers,
// filter) between sessions, one JSON document per list name.
package state

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/peterbourgon/diskv/v3"

	"github.com/vanderheijden86/flexlist/pkg/adapter"
)

// ErrNotFound is returned when no state was saved under a name.
var ErrNotFound = errors.New("state not found")

const ext = ".json"

// Store keeps saved states in a directory.
type Store struct {
	d *diskv.Diskv
}

// Open returns a Store rooted at dir, creating it if needed.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("state directory not set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &Store{d: diskv.New(diskv.Options{
		BasePath:          dir,
		AdvancedTransform: keyToPath,
		InverseTransform:  pathToKey,
		CacheSizeMax:      256 * 1024,
	})}, nil
}

// List names can hold path separators, so files are named by their
// base64 form.
func keyToPath(key string) *diskv.PathKey {
	return &diskv.PathKey{FileName: key}
}

func pathToKey(pk *diskv.PathKey) string { return pk.FileName }

func fileName(name string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(name)) + ext
}

func listName(file string) (string, bool) {
	enc, ok := strings.CutSuffix(file, ext)
	if !ok {
		return "", false
	}
	b, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Save stores st under name.
func (s *Store) Save(name string, st adapter.State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding state %q: %w", name, err)
	}
	if err := s.d.Write(fileName(name), b); err != nil {
		return fmt.Errorf("writing state %q: %w", name, err)
	}
	return nil
}

// Load returns the state saved under name, or ErrNotFound.
func (s *Store) Load(name string) (adapter.State, error) {
	var st adapter.State
	key := fileName(name)
	if !s.d.Has(key) {
		return st, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	b, err := s.d.Read(key)
	if err != nil {
		return st, fmt.Errorf("reading state %q: %w", name, err)
	}
	if err := json.Unmarshal(b, &st); err != nil {
		return st, fmt.Errorf("decoding state %q: %w", name, err)
	}
	return st, nil
}

// Delete removes the state saved under name. Deleting a missing state
// is not an error.
func (s *Store) Delete(name string) error {
	key := fileName(name)
	if !s.d.Has(key) {
		return nil
	}
	return s.d.Erase(key)
}

// Names returns the saved list names in order.
func (s *Store) Names(ctx context.Context) []string {
	var names []string
	for key := range s.d.Keys(ctx.Done()) {
		if name, ok := listName(key); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
