// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"errors"
	"fmt"
	"os"

	"github.com/awnumar/memguard"
)

// ErrSecretNotFound indicates the environment variable is unset or empty.
var ErrSecretNotFound = errors.New("secret not found")

// SealedKey holds an API key encrypted in memory.
//
// Description:
//
//	The key is decrypted into a locked buffer only for the duration of a
//	Use callback. Callers must not retain the slice passed to fn.
//
// Thread Safety: Safe for concurrent use.
type SealedKey struct {
	enclave *memguard.Enclave
}

// SealEnv reads the environment variable name and seals its value.
func SealEnv(name string) (*SealedKey, error) {
	value := os.Getenv(name)
	if value == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrSecretNotFound)
	}
	return SealBytes([]byte(value)), nil
}

// SealBytes seals b and wipes it. An empty b yields a key whose Use
// fails with ErrSecretNotFound.
func SealBytes(b []byte) *SealedKey {
	return &SealedKey{enclave: memguard.NewEnclave(b)}
}

// Use decrypts the key, passes it to fn and destroys the plaintext buffer.
func (k *SealedKey) Use(fn func(secret []byte) error) error {
	if k == nil || k.enclave == nil {
		return ErrSecretNotFound
	}
	buf, err := k.enclave.Open()
	if err != nil {
		return fmt.Errorf("opening sealed key: %w", err)
	}
	defer buf.Destroy()
	return fn(buf.Bytes())
}
