// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509keys

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"math/big"
)

const (
	// MinModulusBits is the smallest RSA modulus Generate accepts.
	MinModulusBits = 2048

	// DefaultExponent is the public exponent used by the hierarchy profiles.
	DefaultExponent = 65537

	// maxExponent is the largest exponent crypto/rsa can operate with.
	maxExponent = 1<<31 - 1

	// maxPrimeAttempts bounds the prime search for non-default exponents.
	maxPrimeAttempts = 64
)

// ErrKeyGeneration indicates that a key pair could not be produced.
var ErrKeyGeneration = errors.New("x509keys: key generation failed")

// KeyGenerationError describes why a key pair request was rejected or failed.
// It matches [ErrKeyGeneration] with errors.Is.
type KeyGenerationError struct {
	Bits     int
	Exponent int
	Reason   string
	Err      error
}

func (e *KeyGenerationError) Error() string {
	msg := fmt.Sprintf("x509keys: cannot generate %d-bit RSA key with exponent %d: %s", e.Bits, e.Exponent, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is [ErrKeyGeneration].
func (e *KeyGenerationError) Is(target error) bool { return target == ErrKeyGeneration }

// Unwrap returns the underlying cause, if any.
func (e *KeyGenerationError) Unwrap() error { return e.Err }

// KeyPair holds an RSA key pair owned by exactly one entity of the hierarchy.
type KeyPair struct {
	Public  *rsa.PublicKey
	Private *rsa.PrivateKey
}

// Signer returns the private half as a [crypto.Signer].
func (kp *KeyPair) Signer() crypto.Signer { return kp.Private }

// Bits returns the modulus size in bits.
func (kp *KeyPair) Bits() int { return kp.Public.N.BitLen() }

// Generate creates an RSA key pair using crypto/rand.
//
// Parameters:
//   - bits: Modulus size, at least [MinModulusBits]
//   - exponent: Public exponent, odd and at least 3
//
// Returns:
//   - *KeyPair: The generated key pair
//   - error: A [*KeyGenerationError] if the parameters are unsafe or generation fails
func Generate(bits, exponent int) (*KeyPair, error) {
	return GenerateWithRand(rand.Reader, bits, exponent)
}

// GenerateWithRand is like [Generate] but draws entropy from random, which
// must be a cryptographically secure source safe for the caller's concurrency.
func GenerateWithRand(random io.Reader, bits, exponent int) (*KeyPair, error) {
	if err := checkParams(bits, exponent); err != nil {
		return nil, err
	}

	var (
		priv *rsa.PrivateKey
		err  error
	)
	if exponent == DefaultExponent {
		priv, err = rsa.GenerateKey(random, bits)
	} else {
		priv, err = generateWithExponent(random, bits, exponent)
	}
	if err != nil {
		return nil, &KeyGenerationError{Bits: bits, Exponent: exponent, Reason: "generation failed", Err: err}
	}

	return &KeyPair{Public: &priv.PublicKey, Private: priv}, nil
}

func checkParams(bits, exponent int) error {
	switch {
	case bits < MinModulusBits:
		return &KeyGenerationError{Bits: bits, Exponent: exponent, Reason: fmt.Sprintf("modulus below %d bits", MinModulusBits)}
	case exponent < 3:
		return &KeyGenerationError{Bits: bits, Exponent: exponent, Reason: "exponent must be at least 3"}
	case exponent%2 == 0:
		return &KeyGenerationError{Bits: bits, Exponent: exponent, Reason: "exponent must be odd"}
	case exponent > maxExponent:
		return &KeyGenerationError{Bits: bits, Exponent: exponent, Reason: "exponent too large"}
	}
	return nil
}

// generateWithExponent searches for two primes p, q such that e is coprime
// to both p-1 and q-1, then derives d modulo lcm(p-1, q-1).
func generateWithExponent(random io.Reader, bits, exponent int) (*rsa.PrivateKey, error) {
	one := big.NewInt(1)
	e := big.NewInt(int64(exponent))

	for range maxPrimeAttempts {
		p, err := rand.Prime(random, bits-bits/2)
		if err != nil {
			return nil, err
		}
		q, err := rand.Prime(random, bits/2)
		if err != nil {
			return nil, err
		}
		if p.Cmp(q) == 0 {
			continue
		}

		n := new(big.Int).Mul(p, q)
		if n.BitLen() != bits {
			continue
		}

		pMinus1 := new(big.Int).Sub(p, one)
		qMinus1 := new(big.Int).Sub(q, one)
		if new(big.Int).GCD(nil, nil, e, pMinus1).Cmp(one) != 0 ||
			new(big.Int).GCD(nil, nil, e, qMinus1).Cmp(one) != 0 {
			continue
		}

		g := new(big.Int).GCD(nil, nil, pMinus1, qMinus1)
		lambda := new(big.Int).Mul(pMinus1, qMinus1)
		lambda.Div(lambda, g)

		d := new(big.Int).ModInverse(e, lambda)
		if d == nil {
			continue
		}

		priv := &rsa.PrivateKey{
			PublicKey: rsa.PublicKey{N: n, E: exponent},
			D:         d,
			Primes:    []*big.Int{p, q},
		}
		priv.Precompute()
		if err := priv.Validate(); err != nil {
			return nil, err
		}
		return priv, nil
	}

	return nil, errors.New("prime search exhausted")
}
