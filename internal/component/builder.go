package component

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/roach88/sqlecs/internal/store"
)

// Builder collects the components of a single entity and writes them in
// one transaction.
//
//	b := component.NewBuilder(st)
//	if err := b.Add(component.Position{X: 100, Y: 100}); err != nil { ... }
//	if err := b.Add(component.Gravity{Amount: 100}); err != nil { ... }
//	id, err := b.Finish(ctx)
type Builder struct {
	store      *store.Store
	log        *zap.Logger
	entity     int64
	pinned     bool
	components []Component
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used to report entity creation.
func WithLogger(log *zap.Logger) BuilderOption {
	return func(b *Builder) {
		b.log = log
	}
}

// NewBuilder creates a Builder with no entity pinned.
func NewBuilder(st *store.Store, opts ...BuilderOption) *Builder {
	b := &Builder{
		store: st,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetEntity pins the builder to an entity row the caller already created.
// A negative id clears the pin so Finish allocates a new entity.
func (b *Builder) SetEntity(id int64) *Builder {
	if id < 0 {
		b.entity, b.pinned = 0, false
		return b
	}
	b.entity, b.pinned = id, true
	return b
}

// Add queues c for attachment. It fails with *DuplicateComponentError if a
// component of the same kind is already pending; nothing is written until
// Finish.
func (b *Builder) Add(c Component) error {
	if c == nil {
		return ErrNilComponent
	}
	for _, pending := range b.components {
		if pending.Kind() == c.Kind() {
			return &DuplicateComponentError{Component: c.Kind()}
		}
	}
	if err := checkFinite(c); err != nil {
		return err
	}
	b.components = append(b.components, c)
	return nil
}

// Pending returns the number of queued components.
func (b *Builder) Pending() int {
	return len(b.components)
}

// Finish creates the entity (unless one is pinned) and attaches every
// pending component inside a single transaction. On error nothing is
// written. On success the builder is emptied and unpinned and the entity id
// is returned.
func (b *Builder) Finish(ctx context.Context) (int64, error) {
	if len(b.components) == 0 {
		return 0, &InvalidEntityError{Entity: b.entity, Reason: "no components to attach"}
	}

	var entity int64
	err := b.store.WithTx(ctx, func(q store.Querier) error {
		if b.pinned {
			ok, err := store.EntityExists(ctx, q, b.entity)
			if err != nil {
				return err
			}
			if !ok {
				return &InvalidEntityError{Entity: b.entity, Reason: "entity row does not exist"}
			}
			entity = b.entity
		} else {
			b.log.Debug("builder: creating entity")
			id, err := store.NewEntity(ctx, q)
			if err != nil {
				return err
			}
			b.log.Debug("builder: created entity", zap.Int64("entity", id))
			entity = id
		}

		for _, c := range b.components {
			if err := Attach(ctx, q, entity, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	b.components = nil
	b.entity, b.pinned = 0, false
	return entity, nil
}

// checkFinite rejects NaN and infinite payloads so no row starts out of the
// numeric domain.
func checkFinite(c Component) error {
	var values []float64
	switch c := c.(type) {
	case Position:
		values = []float64{c.X, c.Y}
	case Velocity:
		values = []float64{c.X, c.Y}
	case Gravity:
		values = []float64{c.Amount}
	case Graphics:
		values = []float64{c.Width, c.Height}
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s component has non-finite value %v", c.Kind(), v)
		}
	}
	return nil
}
