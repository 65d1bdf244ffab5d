package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"github.com/cbitosc/HTF25-Team-374/internal/db"
	"github.com/cbitosc/HTF25-Team-374/internal/model"
	"github.com/cbitosc/HTF25-Team-374/internal/store"
)

// ensureAdmin creates the administrator account if no active user has the
// given email. It returns the generated password, or "" when the account
// already existed.
func ensureAdmin(ctx context.Context, d *db.DB, name, email string) (string, error) {
	existing, err := store.GetUserByEmail(ctx, d, email)
	if err != nil {
		return "", fmt.Errorf("looking up admin: %w", err)
	}
	if existing != nil {
		return "", nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	if _, err := store.CreateUser(ctx, d, name, email, string(hash), model.RoleAdmin); err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}
	return password, nil
}

// printAdminCreated prints the first-run credentials to stdout.
func printAdminCreated(email, password string) {
	fmt.Println("Admin account created:")
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
	fmt.Println()
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
