// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package hierarchy

import (
	"context"
	"fmt"

	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/authority"
)

// Request describes one server certificate.
type Request struct {
	// Domain is the common name and first DNS name.
	Domain string
	// Name is the store name, Domain when empty.
	Name string
	// DNSNames are added after Domain.
	DNSNames []string
	// IPAddresses default to [authority.DefaultLeafIP] when empty.
	IPAddresses []string
}

func (r Request) storeName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Domain
}

// Issued is a stored server certificate.
type Issued struct {
	Name string
	Leaf *authority.Leaf
}

// Issue signs a server certificate for every request with the stored
// intermediate and saves its key, certificate and full-chain bundle.
// Results keep the order of reqs. Every store name is checked with
// [CheckName] and must be unique within reqs. Nothing is written unless every
// leaf was issued; a store failure while saving can still leave earlier
// leaves written.
func (s *Service) Issue(ctx context.Context, reqs ...Request) ([]Issued, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no domains", ErrInvalidRequest)
	}

	batch := make([]authority.LeafParams, 0, len(reqs))
	seen := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		if r.Domain == "" {
			return nil, fmt.Errorf("%w: empty domain", ErrInvalidRequest)
		}
		name := r.storeName()
		if err := CheckName(name); err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidRequest, name)
		}
		seen[name] = true

		p, err := s.params(s.cfg.Leaf, r.Domain)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Domain, err)
		}
		ips := r.IPAddresses
		if len(ips) == 0 {
			ips = []string{authority.DefaultLeafIP}
		}
		batch = append(batch, authority.LeafParams{
			Params:      p,
			DNSNames:    append([]string{r.Domain}, r.DNSNames...),
			IPAddresses: ips,
		})
	}

	intermediate, err := s.Intermediate()
	if err != nil {
		return nil, err
	}

	s.log.Printf("Issuing %d server certificate(s)...", len(batch))
	leaves, err := intermediate.IssueLeaves(ctx, batch)
	if err != nil {
		return nil, err
	}

	issued := make([]Issued, 0, len(leaves))
	for i, leaf := range leaves {
		name := reqs[i].storeName()
		if err := s.store.SaveKey(name, leaf.Key, s.cfg.KeyPassword()); err != nil {
			return nil, err
		}
		if err := s.store.SaveCertificate(name, leaf.Certificate); err != nil {
			return nil, err
		}
		if err := s.store.SaveBundle(name, leaf.FullChain()); err != nil {
			return nil, err
		}
		s.log.Printf("Issued %q (serial %s): %s, %s, %s", reqs[i].Domain, leaf.Certificate.SerialNumber().Text(16),
			s.store.CertificatePath(name), s.store.KeyPath(name), s.store.BundlePath(name))
		issued = append(issued, Issued{Name: name, Leaf: leaf})
	}
	return issued, nil
}
