// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/helper/posix"
	x509certs "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/certs"
	x509keys "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/keys"
)

const (
	certExt      = ".pem"
	keyExt       = ".key"
	bundleSuffix = "-fullchain.pem"
)

var (
	// ErrInvalidName indicates an entity name that is empty or would escape the store directory.
	ErrInvalidName = errors.New("x509store: invalid entity name")

	// ErrNotFound indicates that the requested file does not exist. It also matches [fs.ErrNotExist].
	ErrNotFound = fmt.Errorf("x509store: not found: %w", fs.ErrNotExist)

	// ErrEmptyBundle indicates a bundle without certificates.
	ErrEmptyBundle = errors.New("x509store: empty bundle")
)

// Store reads and writes hierarchy material below one directory.
type Store struct {
	dir   string
	codec *x509certs.Codec
}

// Open returns a store rooted at dir, creating the directory if needed.
//
// Parameters:
//   - dir: Output directory
//
// Returns:
//   - *Store: The opened store
//   - error: Error if the directory cannot be created
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, posix.DirMode); err != nil {
		return nil, fmt.Errorf("x509store: create %s: %w", dir, err)
	}
	return &Store{dir: dir, codec: x509certs.NewCodec()}, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string { return s.dir }

// CertificatePath returns the path of name's certificate.
func (s *Store) CertificatePath(name string) string { return filepath.Join(s.dir, name+certExt) }

// KeyPath returns the path of name's private key.
func (s *Store) KeyPath(name string) string { return filepath.Join(s.dir, name+keyExt) }

// BundlePath returns the path of name's full-chain bundle.
func (s *Store) BundlePath(name string) string { return filepath.Join(s.dir, name+bundleSuffix) }

// Exists reports whether name has a stored certificate.
func (s *Store) Exists(name string) bool {
	if checkName(name) != nil {
		return false
	}
	_, err := os.Stat(s.CertificatePath(name))
	return err == nil
}

// SaveCertificate writes cert as PEM to name's certificate file.
func (s *Store) SaveCertificate(name string, cert *x509certs.Certificate) error {
	if err := checkName(name); err != nil {
		return err
	}
	return writeFile(s.CertificatePath(name), s.codec.EncodePEM(cert), posix.PublicMode)
}

// LoadCertificate reads name's certificate.
func (s *Store) LoadCertificate(name string) (*x509certs.Certificate, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	data, err := readFile(s.CertificatePath(name))
	if err != nil {
		return nil, err
	}
	cert, err := s.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("x509store: %s: %w", s.CertificatePath(name), err)
	}
	return cert, nil
}

// SaveKey writes the private half of kp as PKCS#8 PEM, encrypted when
// password is non-empty. The file is readable by its owner only.
func (s *Store) SaveKey(name string, kp *x509keys.KeyPair, password []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	if kp == nil {
		return fmt.Errorf("x509store: %s: %w", name, x509keys.ErrUnsupportedKey)
	}
	data, err := x509keys.EncodePrivateKeyPEM(kp.Private, password)
	if err != nil {
		return err
	}
	return writeFile(s.KeyPath(name), data, posix.PrivateMode)
}

// LoadKey reads name's private key, decrypting it with password when needed.
func (s *Store) LoadKey(name string, password []byte) (*x509keys.KeyPair, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	data, err := readFile(s.KeyPath(name))
	if err != nil {
		return nil, err
	}
	key, err := x509keys.DecodePrivateKeyPEM(data, password)
	if err != nil {
		return nil, fmt.Errorf("x509store: %s: %w", s.KeyPath(name), err)
	}
	return x509keys.FromPrivateKey(key), nil
}

// SaveBundle writes certs, leaf first, to name's full-chain file.
func (s *Store) SaveBundle(name string, certs []*x509certs.Certificate) error {
	if err := checkName(name); err != nil {
		return err
	}
	if len(certs) == 0 {
		return ErrEmptyBundle
	}
	return writeFile(s.BundlePath(name), s.codec.EncodeMultiplePEM(certs), posix.PublicMode)
}

// LoadBundle reads name's full-chain file in stored order.
func (s *Store) LoadBundle(name string) ([]*x509certs.Certificate, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	return s.LoadFile(s.BundlePath(name))
}

// LoadFile decodes every certificate in an arbitrary PEM, DER or PKCS#7 file.
func (s *Store) LoadFile(path string) ([]*x509certs.Certificate, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	certs, err := s.codec.DecodeMultiple(data)
	if err != nil {
		return nil, fmt.Errorf("x509store: %s: %w", path, err)
	}
	return certs, nil
}

// CheckName reports whether name can be stored, returning [ErrInvalidName] if not.
func CheckName(name string) error {
	return checkName(name)
}

func checkName(name string) error {
	if !posix.IsPortableName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func writeFile(path string, data []byte, perm fs.FileMode) error {
	if err := posix.WriteFileAtomic(path, data, perm); err != nil {
		return fmt.Errorf("x509store: %w", err)
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("x509store: open %s: %w", path, err)
	}
	defer f.Close()

	data, err := gc.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("x509store: read %s: %w", path, err)
	}
	return data, nil
}
