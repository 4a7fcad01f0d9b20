package library

import (
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/crypto/bcrypt"

	"github.com/olivier-w/libcat/internal/store"
	"github.com/olivier-w/libcat/internal/thumbs"
)

// ErrInvalidPassword is returned when the workspace password does not
// verify against the stored hash.
var ErrInvalidPassword = errors.New("invalid workspace password")

const passwordHashKey = "workspace.password_hash"

// Workspace is an unlocked library context: its own store and its own
// thumbnail storage. It is created by OpenWorkspace and torn down by Lock.
type Workspace struct {
	Dir    string
	Store  *store.Store
	Thumbs *thumbs.Generator
}

// OpenWorkspace opens the library database under dir and verifies the
// password. A workspace with no password set yet adopts the supplied one
// on first open. The caller binds the returned collaborators to a Service.
func OpenWorkspace(dir, password string, gen *thumbs.Generator) (*Workspace, error) {
	st, err := store.Open(filepath.Join(dir, "library.db"))
	if err != nil {
		return nil, err
	}

	hash, err := st.GetSetting(passwordHashKey)
	if err != nil {
		st.Close()
		return nil, err
	}

	switch {
	case hash == "" && password != "":
		newHash, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if hashErr != nil {
			st.Close()
			return nil, fmt.Errorf("failed to hash password: %w", hashErr)
		}
		if err := st.SetSetting(passwordHashKey, string(newHash)); err != nil {
			st.Close()
			return nil, err
		}
	case hash != "":
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
			st.Close()
			return nil, ErrInvalidPassword
		}
	}

	return &Workspace{Dir: dir, Store: st, Thumbs: gen}, nil
}

// Lock tears the workspace down. Services bound to it must Release first;
// any scan still referencing it fails fast on its next file.
func (w *Workspace) Lock() error {
	return w.Store.Close()
}
