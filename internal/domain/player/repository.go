package player

import "context"

// Repository describes player identity persistence needs from use cases.
// Implementations must reject writes that would give two players the same
// non-null id in one namespace with ErrIdentityConflict.
type Repository interface {
	FindByExternalID(ctx context.Context, ns Namespace, value string) (Player, bool, error)
	ListByFilter(ctx context.Context, filter Filter) ([]Player, error)
	GetByIDs(ctx context.Context, playerIDs []string) ([]Player, error)
	Create(ctx context.Context, p Player) error
	Update(ctx context.Context, p Player) error
}
