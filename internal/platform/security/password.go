package security

import "github.com/alexedwards/argon2id"

// Passwords hashes and verifies account passwords. The application secret
// is appended to the plaintext before hashing, binding every stored hash to
// the secret's value.
type Passwords struct {
	secret string
}

func NewPasswords(secret string) *Passwords {
	return &Passwords{secret: secret}
}

func (p *Passwords) Hash(pw string) (string, error) {
	return argon2id.CreateHash(pw+p.secret, argon2id.DefaultParams)
}

func (p *Passwords) Check(hash, pw string) (bool, error) {
	return argon2id.ComparePasswordAndHash(pw+p.secret, hash)
}
