package session

import (
	"context"
	"fmt"

	"leadflow/access"
)

// SeedDemoAccounts registers one account per role for local environments.
// Calling it twice returns ErrDuplicateName on the first existing account.
func SeedDemoAccounts(ctx context.Context, m *Manager) error {
	accounts := []struct {
		name       string
		password   string
		role       access.Role
		weeklyGoal int
	}{
		{"Admin User", "admin", access.RoleAdmin, 0},
		{"Sales Manager", "manager", access.RoleSalesManager, 0},
		{"Sales Rep 1", "rep", access.RoleSalesRep, 0},
		{"Canvasser", "canvas", access.RoleCanvasser, 10},
		{"Confirmation Team", "confirm", access.RoleConfirmation, 0},
	}
	for _, a := range accounts {
		if _, err := m.Register(ctx, a.name, a.password, a.role, a.weeklyGoal); err != nil {
			return fmt.Errorf("session: seed %q: %w", a.name, err)
		}
	}
	return nil
}
