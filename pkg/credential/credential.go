// Package credential keeps the CLI's admin credential in an encrypted file
// so separate invocations share one login.
package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/afandal/storeadmin/pkg/crypt"
)

type record struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"savedAt"`
}

// File is a storefront session backed by an encrypted file.
type File struct {
	mu   sync.Mutex
	path string
	box  *crypt.Box
	tok  string
	read bool
}

// Open returns a File session at path whose contents are sealed with a key
// derived from secret. The file is read lazily.
func Open(path, secret string) (*File, error) {
	box, err := crypt.NewBox(secret, "credential")
	if err != nil {
		return nil, err
	}
	return &File{path: path, box: box}, nil
}

// Path is the backing file.
func (f *File) Path() string { return f.path }

// Token returns the stored credential, or "" when none is stored or the
// file cannot be decrypted with the current key.
func (f *File) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	return f.tok
}

func (f *File) load() {
	if f.read {
		return
	}
	f.read = true

	raw, err := os.ReadFile(f.path)
	if err != nil {
		return
	}
	plain, err := f.box.Open(string(raw))
	if err != nil {
		return
	}
	var rec record
	if json.Unmarshal(plain, &rec) == nil {
		f.tok = rec.Token
	}
}

// Set stores token, replacing any previous credential.
func (f *File) Set(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := json.Marshal(record{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	enc, err := f.box.Seal(raw)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("credential: mkdir: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(enc), 0o600); err != nil {
		return fmt.Errorf("credential: write: %w", err)
	}
	f.tok, f.read = token, true
	return nil
}

// Clear removes the stored credential. Safe to call repeatedly; only a
// call that finds a credential reports true.
func (f *File) Clear() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	held := f.tok != ""
	f.tok, f.read = "", true

	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = os.WriteFile(f.path, nil, 0o600)
	}
	return held || err == nil
}
