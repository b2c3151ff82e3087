// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives for operator credentials.
//
// # Architecture
//
// This package isolates security-sensitive code (API key hashing, JWT signing)
// from the catalog logic. The HTTP middleware only depends on the
// [TokenService.VerifyToken] and [CheckAPIKey] entry points.
package sec

import (
	"crypto/rsa"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OperatorClaims represents the payload embedded inside an operator token.
//
// Operators are batch runners and admin tools allowed to trigger resolves.
// The scope list is embedded so the middleware never touches storage.
type OperatorClaims struct {
	jwt.RegisteredClaims

	Operator string   `json:"opr"`
	Scopes   []string `json:"scp"`
}

// HasScope reports whether the claims grant the given scope.
func (claims *OperatorClaims) HasScope(scope string) bool {
	return slices.Contains(claims.Scopes, scope)
}

// TokenService handles generation and verification of operator tokens using RS256.
//
// A service built without a private key can verify but not issue.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
}

// NewTokenService creates a new TokenService.
// It reads RSA keys from the provided filesystem paths. An empty
// privateKeyPath yields a verify-only service.
func NewTokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	service := &TokenService{issuer: issuer}

	if privateKeyPath != "" {
		privateKeyData, err := os.ReadFile(privateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("sec: failed to read private key from %s: %w", privateKeyPath, err)
		}

		service.privateKey, err = jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
		if err != nil {
			return nil, fmt.Errorf("sec: failed to parse private key: %w", err)
		}
	}

	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	service.publicKey, err = jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return service, nil
}

// NewTokenServiceFromKeys builds a TokenService from already parsed keys.
func NewTokenServiceFromKeys(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer string) *TokenService {
	return &TokenService{privateKey: privateKey, publicKey: publicKey, issuer: issuer}
}

// GenerateOperatorToken creates a signed operator token.
func (service *TokenService) GenerateOperatorToken(operator string, scopes []string, timeToLive time.Duration) (string, error) {
	if service.privateKey == nil {
		return "", fmt.Errorf("sec: token service has no private key")
	}

	currentTime := time.Now()
	claims := OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Operator: operator,
		Scopes:   scopes,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(service.privateKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature, issuer and validity of a JWT string.
func (service *TokenService) VerifyToken(tokenString string) (*OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.publicKey, nil
	}, jwt.WithIssuer(service.issuer))

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*OperatorClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}
