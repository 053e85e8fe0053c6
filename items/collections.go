package items

import (
	"context"
	"time"
)

// The typed helpers below pin the backend conventions for shopping items and
// country records: a fixed type, category, and color, and dynamics trimmed to
// the fields that type owns.

// Supermarkets lists shopping items.
func (s *Service) Supermarkets(ctx context.Context) ([]Item, error) {
	return s.List(ctx, ListOptions{Type: TypeSupermarket})
}

// CreateSupermarket creates a shopping item with the supermarket defaults
// applied.
func (s *Service) CreateSupermarket(ctx context.Context, item Item) (*Item, error) {
	normalizeSupermarket(&item)
	return s.Create(ctx, item)
}

// UpdateSupermarket updates a shopping item, re-applying the supermarket
// defaults.
func (s *Service) UpdateSupermarket(ctx context.Context, item Item) (*Item, error) {
	normalizeSupermarket(&item)
	return s.Update(ctx, item)
}

// Countries lists country reference records.
func (s *Service) Countries(ctx context.Context) ([]Item, error) {
	return s.List(ctx, ListOptions{Type: TypeCountry})
}

// CreateCountry creates a country record with the country defaults applied.
func (s *Service) CreateCountry(ctx context.Context, item Item) (*Item, error) {
	normalizeCountry(&item)
	return s.Create(ctx, item)
}

// UpdateCountry updates a country record, re-applying the country defaults.
func (s *Service) UpdateCountry(ctx context.Context, item Item) (*Item, error) {
	normalizeCountry(&item)
	return s.Update(ctx, item)
}

func normalizeSupermarket(item *Item) {
	item.Type = TypeSupermarket
	item.Category = CategorySupermarket
	item.Color = ColorBlue
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().UnixMilli()
	}
	if item.Dynamics != nil {
		item.Dynamics = &Dynamics{
			Quantity: item.Dynamics.Quantity,
			Unit:     item.Dynamics.Unit,
			Price:    item.Dynamics.Price,
			Notes:    item.Dynamics.Notes,
		}
	}
}

func normalizeCountry(item *Item) {
	item.Type = TypeCountry
	item.Category = CategoryCountry
	item.Color = ColorGreen
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().UnixMilli()
	}
	if item.Dynamics != nil {
		item.Dynamics = &Dynamics{
			Capital:    item.Dynamics.Capital,
			Population: item.Dynamics.Population,
			Language:   item.Dynamics.Language,
			Notes:      item.Dynamics.Notes,
		}
	}
}
