package hidden

import (
	"context"

	"llavedesol/internal/domain/account"
	domain "llavedesol/internal/domain/hidden"
)

// Store persists each user's hidden-message set, one per role.
type Store interface {
	Load(ctx context.Context, username string, role account.Role) (domain.Set, error)
	Save(ctx context.Context, username string, set domain.Set) error
}
