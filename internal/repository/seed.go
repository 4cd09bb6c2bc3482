package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"vmportal/internal/auth"
	"vmportal/internal/models"
)

type seedAccount struct {
	username    string
	email       string
	password    string
	fullName    string
	role        string
	assignedVMs []int64
}

// Classroom bootstrap accounts. Created only when their email is not yet
// taken, so re-running the seed is harmless.
var seedAccounts = []seedAccount{
	{"student1", "student1@school.com", "password123", "Student One", models.RoleStudent, []int64{100, 101}},
	{"student2", "student2@school.com", "password123", "Student Two", models.RoleStudent, []int64{102}},
	{"admin", "admin@school.com", "admin123", "Administrator", models.RoleAdmin, []int64{}},
}

// SeedUsers provisions the predefined classroom accounts.
func SeedUsers(ctx context.Context, repo UserRepository, log *zap.Logger) error {
	for _, acc := range seedAccounts {
		if _, err := repo.GetByEmail(ctx, acc.email); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("seed user %s: %w", acc.email, err)
		}

		hash, err := auth.HashPassword(acc.password)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", acc.email, err)
		}

		user := &models.User{
			ID:           uuid.NewString(),
			Username:     acc.username,
			Email:        acc.email,
			FullName:     acc.fullName,
			PasswordHash: hash,
			Role:         acc.role,
			AssignedVMs:  pq.Int64Array(acc.assignedVMs),
		}
		if err := repo.Create(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", acc.email, err)
		}
		log.Info("Created seed user", zap.String("email", acc.email), zap.String("role", acc.role))
	}
	return nil
}
