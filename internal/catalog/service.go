// Package catalog owns the item collection: role-gated mutations, the
// photo sequencing contract, and reconciliation against change feed
// events.
package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"inventory/api/internal/auth"
	"inventory/api/internal/fault"
	"inventory/api/internal/feed"
	"inventory/api/internal/ids"
	"inventory/api/internal/models"
	"inventory/api/internal/photo"
	"inventory/api/internal/repository"
)

// ItemStore is the slice of the record store the service needs.
type ItemStore interface {
	Create(ctx context.Context, item models.Item) error
	Update(ctx context.Context, item models.Item) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (models.Item, error)
	List(ctx context.Context) ([]models.Item, error)
	SuggestByName(ctx context.Context, fragment string, limit int) ([]models.Item, error)
	FindByNameLocation(ctx context.Context, name, location string) (models.Item, error)
}

// Notifier fans a mutation event out to other connected clients.
type Notifier interface {
	Notify(ctx context.Context, entity feed.Entity)
}

const suggestLimit = 5

// Service coordinates item mutations. Every mutating entry point
// re-resolves the caller's capability at call time; a stale UI flag is
// never trusted because a profile change can land while a mutation is
// in flight.
type Service struct {
	items    ItemStore
	resolver *auth.Resolver
	photos   *photo.Pipeline
	notify   Notifier
	log      zerolog.Logger

	mu       sync.RWMutex
	snapshot []models.Item
	loaded   bool
}

func NewService(items ItemStore, resolver *auth.Resolver, photos *photo.Pipeline, notify Notifier, log zerolog.Logger) *Service {
	return &Service{
		items:    items,
		resolver: resolver,
		photos:   photos,
		notify:   notify,
		log:      log,
	}
}

// List returns the catalog newest-created first. Reads are public; the
// in-memory snapshot serves repeat calls until a change feed event
// forces a reload.
func (s *Service) List(ctx context.Context) ([]models.Item, error) {
	s.mu.RLock()
	if s.loaded {
		out := append([]models.Item(nil), s.snapshot...)
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	return s.Reload(ctx)
}

// Reload fetches the full collection from the record store and replaces
// the snapshot. Invoked on every items feed event: any row-level change
// triggers a full reload rather than incremental patching.
func (s *Service) Reload(ctx context.Context) ([]models.Item, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fault.RemoteIO("load items", err)
	}

	s.mu.Lock()
	s.snapshot = items
	s.loaded = true
	out := append([]models.Item(nil), s.snapshot...)
	s.mu.Unlock()
	return out, nil
}

// Search filters the loaded collection by case-insensitive substring
// match on name. A pure local projection, never a remote query.
func (s *Service) Search(ctx context.Context, query string) ([]models.Item, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return items, nil
	}

	needle := strings.ToLower(query)
	filtered := items[:0:0]
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// SuggestSimilar returns up to five existing items whose name contains
// partial, looked up remotely so suggestions reflect current server
// truth including rows not yet loaded locally. Fragments shorter than
// two characters yield nothing.
func (s *Service) SuggestSimilar(ctx context.Context, partial string) ([]models.Item, error) {
	partial = strings.TrimSpace(partial)
	if len(partial) < 2 {
		return nil, nil
	}
	items, err := s.items.SuggestByName(ctx, partial, suggestLimit)
	if err != nil {
		return nil, fault.RemoteIO("suggest items", err)
	}
	return items, nil
}

// Create inserts a new item. With a photo attached, transcode, key
// derivation and upload must all succeed before the record is written;
// a failure at any step leaves neither a record nor an orphaned object.
// An exact trimmed (name, location) match raises a confirmation
// checkpoint unless the caller already confirmed.
func (s *Service) Create(ctx context.Context, session *models.Session, draft models.ItemDraft, photoData []byte, confirmDuplicate bool) (models.Item, error) {
	identity := s.resolver.Resolve(ctx, session)
	if !auth.CanWrite(identity) {
		return models.Item{}, fault.Authorization("write access required")
	}

	draft, err := normalizeDraft(draft)
	if err != nil {
		return models.Item{}, err
	}

	existing, err := s.items.FindByNameLocation(ctx, draft.Name, draft.Location)
	switch {
	case err == nil:
		if !confirmDuplicate {
			return models.Item{}, fault.Conflict("item already exists at this location", existing)
		}
	case errors.Is(err, repository.ErrItemNotFound):
		// no duplicate
	default:
		return models.Item{}, fault.RemoteIO("duplicate check", err)
	}

	item := models.Item{
		ID:        ids.New(),
		Name:      draft.Name,
		Quantity:  draft.Quantity,
		Location:  draft.Location,
		CreatedAt: time.Now().UTC(),
	}

	var uploadedKey string
	if len(photoData) > 0 {
		key, url, err := s.processPhoto(ctx, photoData)
		if err != nil {
			return models.Item{}, err
		}
		uploadedKey = key
		item.PhotoKey = &key
		item.PhotoURL = &url
	}

	if err := s.items.Create(ctx, item); err != nil {
		// The object was stored before the record write; reclaim it so
		// a failed create leaves nothing behind.
		s.photos.Release(ctx, uploadedKey)
		return models.Item{}, fault.RemoteIO("create item", err)
	}

	s.applyLocal(func(snapshot []models.Item) []models.Item {
		return append([]models.Item{item}, snapshot...)
	})
	if s.notify != nil {
		s.notify.Notify(ctx, feed.EntityItems)
	}
	return item, nil
}

// Update rewrites an item's fields. A replacement photo is uploaded and
// the record pointed at it before the old object is released, so the
// record never references a missing object. The worst interruption cost
// is a transient orphan, reclaimed by the sweep job.
func (s *Service) Update(ctx context.Context, session *models.Session, id string, draft models.ItemDraft, photoData []byte) (models.Item, error) {
	identity := s.resolver.Resolve(ctx, session)
	if !auth.CanWrite(identity) {
		return models.Item{}, fault.Authorization("write access required")
	}

	draft, err := normalizeDraft(draft)
	if err != nil {
		return models.Item{}, err
	}

	current, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return models.Item{}, fault.Validation("item no longer exists")
		}
		return models.Item{}, fault.RemoteIO("load item", err)
	}

	updated := current
	updated.Name = draft.Name
	updated.Quantity = draft.Quantity
	updated.Location = draft.Location

	var oldKey string
	if len(photoData) > 0 {
		key, url, err := s.processPhoto(ctx, photoData)
		if err != nil {
			return models.Item{}, err
		}
		if current.HasPhoto() {
			oldKey = *current.PhotoKey
		}
		updated.PhotoKey = &key
		updated.PhotoURL = &url

		if err := s.items.Update(ctx, updated); err != nil {
			// Record still points at the old object; reclaim the new one.
			s.photos.Release(ctx, key)
			return models.Item{}, fault.RemoteIO("update item", err)
		}
		// Only now, with the record safely on the new object, drop the
		// old one.
		s.photos.Release(ctx, oldKey)
	} else {
		if err := s.items.Update(ctx, updated); err != nil {
			return models.Item{}, fault.RemoteIO("update item", err)
		}
	}

	s.applyLocal(func(snapshot []models.Item) []models.Item {
		for i := range snapshot {
			if snapshot[i].ID == updated.ID {
				snapshot[i] = updated
			}
		}
		return snapshot
	})
	if s.notify != nil {
		s.notify.Notify(ctx, feed.EntityItems)
	}
	return updated, nil
}

// Delete removes the record, then releases any associated photo object.
// Record deletion is authoritative: a failed release is logged inside
// the pipeline and the delete still reports success. Deleting an absent
// id is a no-op success.
func (s *Service) Delete(ctx context.Context, session *models.Session, id string) error {
	identity := s.resolver.Resolve(ctx, session)
	if !auth.CanWrite(identity) {
		return fault.Authorization("write access required")
	}

	current, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil
		}
		return fault.RemoteIO("load item", err)
	}

	if err := s.items.Delete(ctx, id); err != nil {
		return fault.RemoteIO("delete item", err)
	}

	if current.HasPhoto() {
		s.photos.Release(ctx, *current.PhotoKey)
	}

	s.applyLocal(func(snapshot []models.Item) []models.Item {
		out := snapshot[:0]
		for _, item := range snapshot {
			if item.ID != id {
				out = append(out, item)
			}
		}
		return out
	})
	if s.notify != nil {
		s.notify.Notify(ctx, feed.EntityItems)
	}
	return nil
}

func (s *Service) processPhoto(ctx context.Context, data []byte) (key, url string, err error) {
	jpegData, err := s.photos.Transcode(data)
	if err != nil {
		return "", "", err
	}
	key = s.photos.DeriveKey()
	url, err = s.photos.Upload(ctx, key, jpegData)
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

// applyLocal mutates the snapshot optimistically; the feed-driven reload
// remains the authoritative reconciliation.
func (s *Service) applyLocal(mutate func([]models.Item) []models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return
	}
	s.snapshot = mutate(s.snapshot)
	sort.SliceStable(s.snapshot, func(i, j int) bool {
		return s.snapshot[i].CreatedAt.After(s.snapshot[j].CreatedAt)
	})
}

func normalizeDraft(draft models.ItemDraft) (models.ItemDraft, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Location = strings.TrimSpace(draft.Location)
	if draft.Name == "" {
		return draft, fault.Validation("item name is required")
	}
	if draft.Quantity < 0 {
		draft.Quantity = 0
	}
	return draft, nil
}
