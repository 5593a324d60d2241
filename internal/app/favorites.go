package app

import "context"

// FavoritesUsecase defines the favorites use cases.
type FavoritesUsecase interface {
	List(ctx context.Context) ([]string, error)
	Toggle(ctx context.Context, slug string) (bool, error)
}

// FavoritesStore is the store surface the favorites use cases need.
type FavoritesStore interface {
	ListFavorites(ctx context.Context) ([]string, error)
	ToggleFavorite(ctx context.Context, slug string) (bool, error)
}

// FavoritesService implements FavoritesUsecase over the store.
type FavoritesService struct {
	Store FavoritesStore
}

// List returns the favorited slugs in insertion order.
func (s *FavoritesService) List(ctx context.Context) ([]string, error) {
	return s.Store.ListFavorites(ctx)
}

// Toggle flips the favorite state for slug and reports the new state.
func (s *FavoritesService) Toggle(ctx context.Context, slug string) (bool, error) {
	return s.Store.ToggleFavorite(ctx, slug)
}
