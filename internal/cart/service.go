package cart

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/just-smsm/storefront/internal/catalog"
	"golang.org/x/sync/singleflight"
)

// maxSaveAttempts bounds the read-modify-write retry loop on version
// conflicts from writers in other processes.
const maxSaveAttempts = 5

// ProductLookup is the slice of the catalog the cart needs: current
// name/price/picture for a product being added.
type ProductLookup interface {
	ProductInfo(ctx context.Context, productID int64) (*catalog.Product, error)
}

type Service struct {
	repo     Repository
	cache    Cache
	products ProductLookup
	sfg      singleflight.Group // prevents cache stampede

	mu    sync.Mutex
	locks map[string]*sync.Mutex // serializes mutations per email
}

func NewService(repo Repository, cache Cache, products ProductLookup) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		products: products,
		locks:    make(map[string]*sync.Mutex),
	}
}

// GetCart never fails with not-found: a user without a persisted cart gets an
// empty one.
func (s *Service) GetCart(ctx context.Context, email string) (*Cart, error) {
	v, err, _ := s.sfg.Do(email, func() (interface{}, error) {
		cached, err := s.cache.Get(ctx, email)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		// The fill holds the same lock as mutations: a write that lands
		// between the repo read and the cache set would otherwise have
		// its invalidation overwritten by the stale fill.
		lock := s.emailLock(email)
		lock.Lock()
		defer lock.Unlock()

		stored, errGet := s.repo.Get(ctx, email)
		if errors.Is(errGet, ErrCartNotFound) {
			return newCart(email), nil
		}
		if errGet != nil {
			return nil, errGet
		}

		if errSet := s.cache.Set(ctx, email, stored); errSet != nil {
			log.Printf("cache set error: %v", errSet)
		}

		return stored, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Cart), nil
}

// CurrentCart reads the persisted cart, bypassing the cache. Callers that go
// on to act on the cart's contents (checkout) use this so a cached copy can
// never be the one snapshotted.
func (s *Service) CurrentCart(ctx context.Context, email string) (*Cart, error) {
	stored, err := s.repo.Get(ctx, email)
	if errors.Is(err, ErrCartNotFound) {
		return newCart(email), nil
	}
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// AddItem looks up the product's current name, price and picture, then
// increments an existing line or appends a new one with quantity 1.
func (s *Service) AddItem(ctx context.Context, email string, productID int64) (*Cart, error) {
	info, err := s.products.ProductInfo(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, email, func(c *Cart) error {
		c.addItem(Item{
			ProductID:   info.ID,
			ProductName: info.Name,
			UnitPrice:   info.Price,
			PictureURL:  info.PictureURL,
		})
		return nil
	})
}

// RemoveItem deletes the line for productID; removing an absent line is a
// no-op, not an error.
func (s *Service) RemoveItem(ctx context.Context, email string, productID int64) (*Cart, error) {
	return s.mutate(ctx, email, func(c *Cart) error {
		c.removeItem(productID)
		return nil
	})
}

// UpdateQuantity sets the quantity of an existing line. Quantities below 1
// are rejected with ErrInvalidQuantity; in particular 0 does not delete the
// line, removal has its own operation.
func (s *Service) UpdateQuantity(ctx context.Context, email string, productID int64, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	return s.mutate(ctx, email, func(c *Cart) error {
		if !c.setQuantity(productID, quantity) {
			return ErrItemNotFound
		}
		return nil
	})
}

// Clear empties the cart; the row survives with zero items and total.
func (s *Service) Clear(ctx context.Context, email string) (*Cart, error) {
	return s.mutate(ctx, email, func(c *Cart) error {
		c.clear()
		return nil
	})
}

// mutate serializes the read-modify-write per email so two concurrent
// mutations in this process never race, and retries on version conflicts
// from other processes.
func (s *Service) mutate(ctx context.Context, email string, apply func(*Cart) error) (*Cart, error) {
	lock := s.emailLock(email)
	lock.Lock()
	defer lock.Unlock()

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		cart, err := s.repo.Get(ctx, email)
		if errors.Is(err, ErrCartNotFound) {
			cart = newCart(email)
		} else if err != nil {
			return nil, err
		}

		if errApply := apply(cart); errApply != nil {
			return nil, errApply
		}

		errSave := s.repo.Save(ctx, cart)
		if errors.Is(errSave, ErrVersionConflict) {
			continue
		}
		if errSave != nil {
			log.Printf("repo save cart error: %v", errSave)
			return nil, errSave
		}

		s.invalidateCache(email)
		return cart, nil
	}

	return nil, ErrVersionConflict
}

func (s *Service) emailLock(email string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[email]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[email] = lock
	}
	return lock
}

func (s *Service) invalidateCache(email string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, email); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
