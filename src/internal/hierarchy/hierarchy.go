// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/config"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/authority"
	x509certs "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/chain"
	x509keys "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/keys"
	x509store "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/store"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/logger"
)

var (
	// ErrExists indicates that Init would overwrite existing authorities.
	ErrExists = errors.New("hierarchy: authorities already exist in the store")

	// ErrMissing indicates that the store holds no authorities.
	ErrMissing = errors.New("hierarchy: no authorities in the store")

	// ErrNoAnchor indicates that no trust anchor could be found for a chain.
	ErrNoAnchor = errors.New("hierarchy: no trust anchor")

	// ErrInvalidRequest indicates an issue request without a domain.
	ErrInvalidRequest = errors.New("hierarchy: invalid request")

	// ErrReservedName indicates a leaf or key name that would overwrite an authority.
	ErrReservedName = errors.New("hierarchy: name is reserved for an authority")
)

// CheckName reports whether name may hold a server certificate or a
// standalone key. The authority names and names the store cannot hold are
// rejected.
func CheckName(name string) error {
	if name == config.RootName || name == config.IntermediateName {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	if err := x509store.CheckName(name); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// Service creates and uses a hierarchy kept in a store.
type Service struct {
	cfg   *config.Config
	store *x509store.Store
	log   logger.Logger
}

// New returns a Service for the profile cfg backed by store.
// Progress is reported through log.
func New(cfg *config.Config, store *x509store.Store, log logger.Logger) *Service {
	return &Service{cfg: cfg, store: store, log: log}
}

// Config returns the profile the service was created with.
func (s *Service) Config() *config.Config { return s.cfg }

// Store returns the backing store.
func (s *Service) Store() *x509store.Store { return s.store }

// Exists reports whether either authority is already stored.
func (s *Service) Exists() bool {
	return s.store.Exists(config.RootName) || s.store.Exists(config.IntermediateName)
}

// Init creates the root and intermediate authorities from the profile and
// saves them. Existing authorities are only replaced when force is set.
//
// Parameters:
//   - ctx: Checked between the two key generations
//   - force: Replace an existing hierarchy
//
// Returns:
//   - *authority.Authority: The intermediate, whose parent is the root
//   - error: [ErrExists], a profile error or a build or store error
func (s *Service) Init(ctx context.Context, force bool) (*authority.Authority, error) {
	if !force && s.Exists() {
		return nil, ErrExists
	}

	rootParams, err := s.params(s.cfg.Root, s.cfg.Root.CommonName)
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	s.log.Printf("Generating root CA %q (%d-bit key)...", s.cfg.Root.CommonName, s.cfg.Root.KeyBits)
	root, err := authority.NewRoot(authority.RootParams{Params: rootParams})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	intParams, err := s.params(s.cfg.Intermediate, s.cfg.Intermediate.CommonName)
	if err != nil {
		return nil, fmt.Errorf("intermediate: %w", err)
	}
	s.log.Printf("Generating intermediate CA %q (%d-bit key)...", s.cfg.Intermediate.CommonName, s.cfg.Intermediate.KeyBits)
	intermediate, err := root.NewIntermediate(authority.IntermediateParams{
		Params:  intParams,
		PathLen: s.cfg.Intermediate.PathLen,
	})
	if err != nil {
		return nil, err
	}

	if err := s.save(config.RootName, root); err != nil {
		return nil, err
	}
	if err := s.save(config.IntermediateName, intermediate); err != nil {
		return nil, err
	}
	return intermediate, nil
}

// Intermediate rebuilds the signing intermediate from the store. The root
// is loaded without its key.
func (s *Service) Intermediate() (*authority.Authority, error) {
	root, err := s.load(config.RootName, nil, false)
	if err != nil {
		return nil, err
	}
	return s.load(config.IntermediateName, root, true)
}

func (s *Service) load(name string, parent *authority.Authority, withKey bool) (*authority.Authority, error) {
	cert, err := s.store.LoadCertificate(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrMissing, err)
		}
		return nil, err
	}

	var kp *x509keys.KeyPair
	if withKey {
		if kp, err = s.store.LoadKey(name, s.cfg.KeyPassword()); err != nil {
			return nil, err
		}
	}
	return authority.Load(cert, kp, parent)
}

func (s *Service) save(name string, a *authority.Authority) error {
	if err := s.store.SaveKey(name, a.Key(), s.cfg.KeyPassword()); err != nil {
		return err
	}
	if err := s.store.SaveCertificate(name, a.Certificate()); err != nil {
		return err
	}
	s.log.Printf("Created %s: %s, %s", a.Certificate().Subject().CommonName(), s.store.CertificatePath(name), s.store.KeyPath(name))
	return nil
}

// params turns a profile tier into authority parameters for the common name cn.
func (s *Service) params(tier config.Tier, cn string) (authority.Params, error) {
	subject, err := s.cfg.Name(cn)
	if err != nil {
		return authority.Params{}, err
	}
	digest, err := tier.ParsedDigest()
	if err != nil {
		return authority.Params{}, err
	}
	return authority.Params{
		Subject:      subject,
		KeyBits:      tier.KeyBits,
		Exponent:     tier.Exponent,
		Digest:       digest,
		ValidityDays: tier.ValidityDays,
	}, nil
}

// ResolveAnchor splits certs into the certificates to validate and the anchor
// to validate them against.
//
// An explicit anchor wins; a trailing copy of it is dropped from the chain.
// Otherwise a trailing self-signed root is used, and finally the stored root.
// When none is available the certificates are returned with [ErrNoAnchor].
func (s *Service) ResolveAnchor(certs []*x509certs.Certificate, anchor *x509certs.Certificate) ([]*x509certs.Certificate, *x509certs.Certificate, error) {
	if anchor != nil {
		if n := len(certs); n > 0 && certs[n-1].Equal(anchor) {
			return certs[:n-1], anchor, nil
		}
		return certs, anchor, nil
	}

	below, anchor := x509chain.New(certs...).SplitAnchor()
	if anchor != nil {
		return below, anchor, nil
	}

	anchor, err := s.store.LoadCertificate(config.RootName)
	if errors.Is(err, fs.ErrNotExist) {
		return below, nil, ErrNoAnchor
	}
	if err != nil {
		return nil, nil, err
	}
	return below, anchor, nil
}

// ParseTime parses a reference time given as RFC 3339 or YYYY-MM-DD.
// The empty string is the current time.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: time %q, want RFC 3339 or YYYY-MM-DD", ErrInvalidRequest, s)
}
