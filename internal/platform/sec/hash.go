// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashToken hashes a plain-text master token using the bcrypt algorithm.
// The result is what goes into MASTER_TOKEN_HASH.
func HashToken(plainTextToken string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextToken), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: failed to hash token: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckTokenHash compares a plain-text token with its hashed version.
func CheckTokenHash(plainTextToken, existingHash string) bool {
	if existingHash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextToken))
	return err == nil
}
