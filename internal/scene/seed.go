package scene

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/sqlecs/internal/component"
	"github.com/roach88/sqlecs/internal/store"
)

// Seed writes every entity of sc into st and returns the entity ids in
// scene order.
//
// Each entity is built in its own transaction. If an entity fails, the
// entities before it stay in the store and the error names the failing one.
func Seed(ctx context.Context, st *store.Store, sc *Scene, log *zap.Logger) ([]int64, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b := component.NewBuilder(st, component.WithLogger(log))

	ids := make([]int64, 0, len(sc.Entities))
	for i, e := range sc.Entities {
		if e.ID != nil {
			if err := store.InsertEntity(ctx, st.DB(), *e.ID); err != nil {
				return ids, fmt.Errorf("seed entity %s: %w", e.name(i), err)
			}
			b.SetEntity(*e.ID)
		}

		for _, c := range e.Components() {
			if err := b.Add(c); err != nil {
				return ids, fmt.Errorf("seed entity %s: %w", e.name(i), err)
			}
		}

		id, err := b.Finish(ctx)
		if err != nil {
			return ids, fmt.Errorf("seed entity %s: %w", e.name(i), err)
		}
		log.Debug("seeded entity", zap.String("label", e.Label), zap.Int64("entity", id))
		ids = append(ids, id)
	}

	log.Info("scene seeded", zap.String("scene", sc.Name), zap.Int("entities", len(ids)))
	return ids, nil
}
