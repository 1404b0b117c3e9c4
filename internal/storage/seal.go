package storage

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Sealing errors.
var (
	ErrSealed          = errors.New("storage: value is encrypted and no passphrase is configured")
	ErrUnseal          = errors.New("storage: cannot decrypt value (wrong passphrase or corrupted data)")
	ErrWrongPassphrase = errors.New("storage: passphrase does not match the database")
)

const (
	// metaSealed marks entries whose value is sealed (badger UserMeta).
	metaSealed byte = 0x01

	saltLength = 16

	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

var (
	saltKey  = []byte("meta\x00salt")
	checkKey = []byte("meta\x00check")
)

// sealer encrypts values with XChaCha20-Poly1305. The database key of a
// value is bound in as associated data, so a sealed value cannot be moved
// to another key.
type sealer struct {
	aead cipher.AEAD
}

func newSealer(passphrase, salt []byte) (*sealer, error) {
	key := argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return &sealer{aead: aead}, nil
}

func (s *sealer) seal(plain, ad []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	nonce := make([]byte, n, n+len(plain)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plain, ad), nil
}

func (s *sealer) open(sealed, ad []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n+s.aead.Overhead() {
		return nil, ErrUnseal
	}
	plain, err := s.aead.Open(nil, sealed[:n], sealed[n:], ad)
	if err != nil {
		return nil, ErrUnseal
	}
	return plain, nil
}

// initSealer derives the engine's sealer from cfg.Passphrase and the salt
// kept in the database, creating salt and check value on first use.
func (e *Engine) initSealer() error {
	e.sealer = nil

	salt, err := e.meta(saltKey)
	if err != nil {
		return err
	}
	check, err := e.meta(checkKey)
	if err != nil {
		return err
	}
	if salt == nil || check == nil {
		salt = make([]byte, saltLength)
		if _, err := rand.Read(salt); err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		check = nil
	}

	s, err := newSealer(e.cfg.Passphrase, salt)
	if err != nil {
		return err
	}

	if check != nil {
		if _, err := s.open(check, checkKey); err != nil {
			return ErrWrongPassphrase
		}
		e.sealer = s
		return nil
	}

	check, err = s.seal([]byte("specs"), checkKey)
	if err != nil {
		return err
	}
	err = e.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(saltKey, salt); err != nil {
			return err
		}
		return txn.Set(checkKey, check)
	})
	if err != nil {
		return fmt.Errorf("store encryption metadata: %w", err)
	}
	e.sealer = s
	return nil
}

func (e *Engine) meta(key []byte) ([]byte, error) {
	var v []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		v, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	return v, nil
}

// value returns the plain value of item, opening it if sealed.
func (e *Engine) value(item *badger.Item) ([]byte, error) {
	v, err := item.ValueCopy(nil)
	if err != nil || item.UserMeta()&metaSealed == 0 {
		return v, err
	}
	if e.sealer == nil {
		return nil, ErrSealed
	}
	return e.sealer.open(v, item.Key())
}
