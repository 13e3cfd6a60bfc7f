// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509keys

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/youmark/pkcs8"
)

const (
	blockPrivateKey          = "PRIVATE KEY"
	blockEncryptedPrivateKey = "ENCRYPTED PRIVATE KEY"
	blockRSAPrivateKey       = "RSA PRIVATE KEY"
	blockPublicKey           = "PUBLIC KEY"
)

var (
	// ErrInvalidPEMBlock indicates that the provided data does not contain a valid PEM block.
	ErrInvalidPEMBlock = errors.New("x509keys: invalid PEM block")

	// ErrInvalidBlockType indicates that the PEM block is not a key block this package understands.
	ErrInvalidBlockType = errors.New("x509keys: invalid block type")

	// ErrPasswordRequired indicates an encrypted key was supplied without a password.
	ErrPasswordRequired = errors.New("x509keys: encrypted private key requires a password")

	// ErrDecryptPrivateKey indicates the encrypted key could not be decrypted, usually a wrong password.
	ErrDecryptPrivateKey = errors.New("x509keys: failed to decrypt private key")

	// ErrUnsupportedKey indicates a key that is not RSA.
	ErrUnsupportedKey = errors.New("x509keys: unsupported key type")
)

// EncodePrivateKeyPEM encodes key as PKCS#8 PEM.
//
// With an empty password the block is "PRIVATE KEY" and the encoding is
// deterministic. With a password the block is "ENCRYPTED PRIVATE KEY"
// (PBES2, fresh salt per call).
func EncodePrivateKeyPEM(key *rsa.PrivateKey, password []byte) ([]byte, error) {
	if key == nil {
		return nil, ErrUnsupportedKey
	}

	if len(password) == 0 {
		der, err := x509.MarshalPKCS8PrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("x509keys: marshal PKCS#8: %w", err)
		}
		return pem.EncodeToMemory(&pem.Block{Type: blockPrivateKey, Bytes: der}), nil
	}

	der, err := pkcs8.MarshalPrivateKey(key, password, nil)
	if err != nil {
		return nil, fmt.Errorf("x509keys: encrypt PKCS#8: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: blockEncryptedPrivateKey, Bytes: der}), nil
}

// DecodePrivateKeyPEM parses the first PEM block in data as an RSA private key.
// PKCS#8, encrypted PKCS#8 and legacy PKCS#1 blocks are accepted.
func DecodePrivateKeyPEM(data, password []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMBlock
	}

	var (
		key any
		err error
	)
	switch block.Type {
	case blockPrivateKey:
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	case blockEncryptedPrivateKey:
		if len(password) == 0 {
			return nil, ErrPasswordRequired
		}
		key, err = pkcs8.ParsePKCS8PrivateKey(block.Bytes, password)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecryptPrivateKey, err)
		}
	case blockRSAPrivateKey:
		key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidBlockType, block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("x509keys: parse private key: %w", err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, key)
	}
	return rsaKey, nil
}

// EncodePublicKeyPEM encodes pub as a PKIX "PUBLIC KEY" block.
func EncodePublicKeyPEM(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("x509keys: marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: blockPublicKey, Bytes: der}), nil
}

// DecodePublicKeyPEM parses a PKIX "PUBLIC KEY" block.
func DecodePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMBlock
	}
	if block.Type != blockPublicKey {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBlockType, block.Type)
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("x509keys: parse public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, pub)
	}
	return rsaPub, nil
}

// FromPrivateKey wraps an already loaded private key as a KeyPair.
func FromPrivateKey(key *rsa.PrivateKey) *KeyPair {
	return &KeyPair{Public: &key.PublicKey, Private: key}
}
