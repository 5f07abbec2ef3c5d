package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when no user record exists so that a
// sign-in attempt with an unknown email costs roughly the same as one
// with a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("identity-service-dummy"), bcrypt.DefaultCost)

// HashPassword hashes the password exactly as submitted. Leading and
// trailing whitespace is significant and preserved.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// BurnPasswordCheck performs a throwaway comparison against a fixed hash.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
