package a

import "context"

type Character struct{ ID string }

type Store interface {
	FindCharacterByID(ctx context.Context, worldID, id string) (*Character, error)
	FindCharactersByIDs(ctx context.Context, worldID string, ids []string) ([]Character, error)
	ListCharacters(ctx context.Context, worldID string) ([]Character, error)
}

func bad(ctx context.Context, ids []string, s Store) {
	for _, id := range ids {
		s.FindCharacterByID(ctx, "op", id) // want "potential N\\+1: FindCharacterByID called inside loop - use FindCharactersByIDs"
	}
	for i := 0; i < 3; i++ {
		s.ListCharacters(ctx, "op") // want "potential N\\+1: ListCharacters called inside loop"
	}
}

func good(ctx context.Context, ids []string, s Store) {
	s.FindCharactersByIDs(ctx, "op", ids)

	var later []func()
	for _, id := range ids {
		later = append(later, func() { s.FindCharacterByID(ctx, "op", id) })
	}
	_ = later
}
