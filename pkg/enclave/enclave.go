// Package enclave seals secrets that have to stay resident for a long time.
//
// An Enclave holds its plaintext encrypted with XChaCha20-Poly1305 under a
// random per-enclave session key. The session key never exists in plaintext
// at rest: it lives in a mangle.Blob, masked against a pad in a separate
// allocation, and is unmasked only for the microseconds an AEAD operation
// needs it. Sealing consumes the input, opening produces a fresh
// secret.Buffer the caller must close.
//
// Like the containers in the mangle package, an Enclave belongs to a single
// goroutine. Nothing in here takes locks.
package enclave

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/Blue-Moss-Labs/Mangle/pkg/mangle"
	"github.com/Blue-Moss-Labs/Mangle/pkg/secret"
	"github.com/Blue-Moss-Labs/Mangle/pkg/wipe"
)

// Overhead is the number of bytes an Enclave stores beyond the plaintext
// size: the XChaCha20 nonce plus the Poly1305 tag.
const Overhead = chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

var (
	// ErrNullEnclave is returned when sealing less than one byte.
	ErrNullEnclave = errors.New("enclave: cannot seal empty plaintext")

	// ErrEnclaveTooShort is returned when the stored ciphertext is too
	// short to contain a nonce, a tag and at least one plaintext byte.
	ErrEnclaveTooShort = errors.New("enclave: ciphertext shorter than minimum")

	// ErrEnclaveDestroyed is returned when operating on a destroyed
	// enclave.
	ErrEnclaveDestroyed = errors.New("enclave: enclave has been destroyed")
)

// Enclave is an encrypted, authenticated container for a secret at rest.
type Enclave struct {
	key        *mangle.Blob
	ciphertext []byte
	destroyed  bool
}

// SealBytes encrypts buf into a new enclave under a fresh random session
// key, then zeroes buf. The caller's slice holds no secret afterwards.
func SealBytes(buf []byte) (*Enclave, error) {
	if len(buf) < 1 {
		return nil, ErrNullEnclave
	}

	sessionKey := make([]byte, chacha20poly1305.KeySize)
	if err := wipe.Scramble(sessionKey); err != nil {
		return nil, fmt.Errorf("enclave: generating session key: %w", err)
	}

	// NewBlob moves the key into masked storage and zeroes sessionKey.
	e := &Enclave{key: mangle.NewBlob(sessionKey)}

	var sealErr error
	e.key.WithUnmangled(func(k []byte) {
		aead, err := chacha20poly1305.NewX(k)
		if err != nil {
			sealErr = err
			return
		}
		nonce := make([]byte, chacha20poly1305.NonceSizeX)
		if err := wipe.Scramble(nonce); err != nil {
			sealErr = err
			return
		}
		e.ciphertext = aead.Seal(nonce, nonce, buf, nil)
	})
	if sealErr != nil {
		e.key.Destroy()
		return nil, fmt.Errorf("enclave: sealing: %w", sealErr)
	}

	wipe.Zero(buf)
	return e, nil
}

// Seal encrypts the contents of b into a new enclave and closes b. The
// buffer is wiped whether or not sealing succeeds.
func Seal(b *secret.Buffer) (*Enclave, error) {
	e, err := SealBytes(b.Bytes())
	// SealBytes zeroed the contents in place, so a failed Close leaks
	// nothing but empty pages.
	_ = b.Close()
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Open decrypts the enclave into a fresh secret.Buffer. The enclave is left
// intact and can be opened again; the caller must Close the returned
// buffer. Authentication failure, from tampering or a foreign key, returns
// an error.
func (e *Enclave) Open() (*secret.Buffer, error) {
	if e.destroyed {
		return nil, ErrEnclaveDestroyed
	}
	if len(e.ciphertext) <= Overhead {
		return nil, ErrEnclaveTooShort
	}

	b, err := secret.New(len(e.ciphertext) - Overhead)
	if err != nil {
		return nil, fmt.Errorf("enclave: %w", err)
	}

	var openErr error
	e.key.WithUnmangled(func(k []byte) {
		aead, err := chacha20poly1305.NewX(k)
		if err != nil {
			openErr = err
			return
		}
		nonce := e.ciphertext[:chacha20poly1305.NonceSizeX]
		box := e.ciphertext[chacha20poly1305.NonceSizeX:]
		// Decrypt straight into the protected buffer.
		if _, err := aead.Open(b.Bytes()[:0], nonce, box, nil); err != nil {
			openErr = err
		}
	})
	if openErr != nil {
		_ = b.Close()
		return nil, fmt.Errorf("enclave: opening: %w", openErr)
	}
	return b, nil
}

// Size returns the number of plaintext bytes sealed inside the enclave, or
// zero if it has been destroyed.
func (e *Enclave) Size() int {
	if e.destroyed || len(e.ciphertext) <= Overhead {
		return 0
	}
	return len(e.ciphertext) - Overhead
}

// Rekey rotates the masking pad protecting the stored session key. The
// AEAD key value itself is unchanged, so existing ciphertext stays
// decryptable.
func (e *Enclave) Rekey() error {
	if e.destroyed {
		return ErrEnclaveDestroyed
	}
	e.key.Rekey()
	return nil
}

// Destroy wipes the ciphertext and destroys the session key, making the
// sealed secret unrecoverable. Destroy is idempotent.
func (e *Enclave) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.key.Destroy()
	wipe.Zero(e.ciphertext)
	e.ciphertext = nil
}
