// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashAPIKey hashes a plain-text operator API key using the bcrypt algorithm.
// The result is what goes into OPERATOR_API_KEY_HASH.
func HashAPIKey(plainTextKey string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextKey), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash api key: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckAPIKey compares a plain-text API key with its hashed version.
func CheckAPIKey(plainTextKey, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextKey))
	return err == nil
}
