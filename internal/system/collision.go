package system

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/sqlecs/internal/store"
)

const collisionSQL = `
	SELECT e.id, p.x, p.y, g.width, g.height
	FROM entity e
	JOIN position p ON p.id = e.id
	JOIN graphics g ON g.id = e.id
	ORDER BY e.id`

// Block is the axis-aligned bounding box of a drawable entity, centered at
// (X, Y).
type Block struct {
	ID            int64
	X, Y          float64
	Width, Height float64
}

func (b Block) Left() float64   { return b.X - b.Width/2 }
func (b Block) Right() float64  { return b.X + b.Width/2 }
func (b Block) Top() float64    { return b.Y - b.Height/2 }
func (b Block) Bottom() float64 { return b.Y + b.Height/2 }

// Overlaps reports whether an edge of b falls inside other's extent on both
// axes, half-open on the right and bottom.
//
// This is not the symmetric interval intersection test. A block that
// strictly contains other on an axis has neither edge inside it, so
// a.Overlaps(b) and b.Overlaps(a) can differ.
func (b Block) Overlaps(other Block) bool {
	horizontal := (b.Left() < other.Right() && b.Left() >= other.Left()) ||
		(b.Right() < other.Right() && b.Right() >= other.Left())
	vertical := (b.Top() < other.Bottom() && b.Top() >= other.Top()) ||
		(b.Bottom() < other.Bottom() && b.Bottom() >= other.Top())
	return horizontal && vertical
}

func (b Block) String() string {
	return fmt.Sprintf("Block{id=%d x=%g y=%g w=%g h=%g}", b.ID, b.X, b.Y, b.Width, b.Height)
}

// Pair is a detected overlap between blocks A and B, where A precedes B in
// entity order.
type Pair struct {
	A, B Block
}

// Collision detects overlapping drawable entities. It reports but never
// resolves collisions and never writes to the store.
type Collision struct {
	stmt *store.Statement
	log  *zap.Logger
	last []Pair
}

// NewCollision prepares the block query.
func NewCollision(ctx context.Context, st *store.Store, log *zap.Logger) (*Collision, error) {
	stmt, err := st.Prepare(ctx, collisionSQL)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Collision{stmt: stmt, log: log}, nil
}

func (c *Collision) Name() string { return "collision" }

// Tick detects collisions and logs them. delta is unused.
func (c *Collision) Tick(ctx context.Context, _ float64) error {
	pairs, err := c.Detect(ctx)
	if err != nil {
		return err
	}
	c.last = pairs

	for _, p := range pairs {
		c.log.Debug("overlap", zap.Stringer("a", p.A), zap.Stringer("b", p.B))
	}
	if len(pairs) > 0 {
		c.log.Info("collisions", zap.Int("count", len(pairs)))
	}
	return nil
}

// Last returns the pairs found by the most recent Tick.
func (c *Collision) Last() []Pair {
	return c.last
}

// Blocks materializes the bounding box of every entity with position and
// graphics, in entity id order.
func (c *Collision) Blocks(ctx context.Context) (blocks []Block, err error) {
	if err := c.stmt.Reset(); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			c.stmt.Reset()
		}
	}()

	for {
		state, err := c.stmt.Step(ctx)
		if err != nil {
			return nil, err
		}
		if state == store.StateDone {
			break
		}

		var b Block
		if b.ID, err = c.stmt.ReadInt(0); err != nil {
			return nil, err
		}
		if b.X, err = c.stmt.ReadFloat(1); err != nil {
			return nil, err
		}
		if b.Y, err = c.stmt.ReadFloat(2); err != nil {
			return nil, err
		}
		if b.Width, err = c.stmt.ReadFloat(3); err != nil {
			return nil, err
		}
		if b.Height, err = c.stmt.ReadFloat(4); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// Detect returns every pair (i, j), i < j, where blocks[i] overlaps
// blocks[j]. O(n²) in the number of drawable entities.
func (c *Collision) Detect(ctx context.Context) ([]Pair, error) {
	blocks, err := c.Blocks(ctx)
	if err != nil {
		return nil, err
	}
	return FindPairs(blocks), nil
}

// FindPairs runs the pairwise overlap scan over blocks.
func FindPairs(blocks []Block) []Pair {
	var pairs []Pair
	for i, a := range blocks {
		for _, b := range blocks[i+1:] {
			if a.Overlaps(b) {
				pairs = append(pairs, Pair{A: a, B: b})
			}
		}
	}
	return pairs
}

func (c *Collision) Close() error {
	return c.stmt.Close()
}
