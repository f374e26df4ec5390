// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/password_hasher_mock.go -package=mock

// PasswordHasher turns passwords into self-describing hashes and checks
// passwords against them.
//
// Encoded hashes use the PHC string format
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<key>
//
// with salt and key in unpadded standard base64. The parameters travel with
// the hash, so hashes created with older parameters keep verifying after
// the defaults change.
type PasswordHasher interface {
	// Hash derives a new encoded hash for password with a fresh random salt.
	Hash(password string) (string, error)

	// Verify reports whether password matches encodedHash. A malformed hash
	// is an error; a wrong password is not.
	Verify(password, encodedHash string) (bool, error)
}
