// Package auth decides which SSH keys may connect and which may open the admin console.
package auth

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"
)

// ErrAllowlistNotFound is returned when the allowlist file doesn't exist.
var ErrAllowlistNotFound = errors.New("allowlist file not found")

// Allowlist is a set of public keys read from an authorized_keys file.
type Allowlist struct {
	path string
	keys []ssh.PublicKey
}

// LoadAllowlist reads an OpenSSH authorized_keys file. Blank lines, comments and
// lines that do not parse are skipped.
func LoadAllowlist(path string) (*Allowlist, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrAllowlistNotFound
		}
		return nil, fmt.Errorf("opening allowlist: %w", err)
	}
	defer file.Close()

	a := &Allowlist{path: path}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		pubKey, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
		if err != nil {
			continue
		}
		a.keys = append(a.keys, pubKey)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading allowlist: %w", err)
	}

	return a, nil
}

// Allows reports whether key is on the list. A nil allowlist allows nobody.
func (a *Allowlist) Allows(key ssh.PublicKey) bool {
	if a == nil || key == nil {
		return false
	}

	keyBytes := key.Marshal()
	for _, allowed := range a.keys {
		if bytes.Equal(keyBytes, allowed.Marshal()) {
			return true
		}
	}
	return false
}

// Len returns the number of keys.
func (a *Allowlist) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Path returns the file the list was read from.
func (a *Allowlist) Path() string {
	if a == nil {
		return ""
	}
	return a.path
}

// CreateEmptyAllowlist writes an allowlist file holding only instructions.
func CreateEmptyAllowlist(path, title string) error {
	content := fmt.Sprintf(`# %s
# Add one public key per line in OpenSSH authorized_keys format.
# Example:
# ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIExample... user@host
`, title)
	return os.WriteFile(path, []byte(content), 0644)
}

// LoadOrCreate loads the allowlist at path, creating an empty one when missing.
// created reports whether the file had to be created.
func LoadOrCreate(path, title string) (list *Allowlist, created bool, err error) {
	list, err = LoadAllowlist(path)
	if errors.Is(err, ErrAllowlistNotFound) {
		if err := CreateEmptyAllowlist(path, title); err != nil {
			return nil, false, fmt.Errorf("creating allowlist: %w", err)
		}
		return &Allowlist{path: path}, true, nil
	}
	return list, false, err
}

// Namespace is the storage namespace of a visitor's key, so cart, wishlist and
// tokens follow the key across reconnects.
func Namespace(key ssh.PublicKey) string {
	if key == nil {
		return "anonymous"
	}
	return ssh.FingerprintSHA256(key)
}
