package bucket

import (
	"testing"

	"github.com/nyxvm/corevm/block"
	"github.com/nyxvm/corevm/layout"
	"github.com/nyxvm/corevm/object"
)

func newTestBlock(t *testing.T) *block.Block {
	t.Helper()
	blk, err := block.New()
	if err != nil {
		t.Fatalf("block.New() error: %v", err)
	}
	t.Cleanup(func() { _ = blk.Close() })
	return blk
}

func TestWithAgeAndIncrement(t *testing.T) {
	b := WithAge(-1)
	if b.Age() != -1 {
		t.Fatalf("expected age -1, got %d", b.Age())
	}
	b.IncrementAge()
	if b.Age() != 0 {
		t.Fatalf("expected age 0 after increment, got %d", b.Age())
	}
	b.ResetAge()
	if b.Age() != 0 {
		t.Fatalf("expected age 0 after reset, got %d", b.Age())
	}
}

func TestAddBlockAndFirstAvailableBlock(t *testing.T) {
	b := New()
	if b.FirstAvailableBlock() != nil {
		t.Fatalf("expected no available block in an empty bucket")
	}

	blk := newTestBlock(t)
	b.AddBlock(blk)

	got := b.FirstAvailableBlock()
	if got != blk {
		t.Fatalf("expected the added block to be available")
	}
	if blk.Owner() != b {
		t.Fatalf("expected AddBlock to set the block's owner")
	}
}

func TestBumpAllocateRoutesThroughAvailableBlock(t *testing.T) {
	b := New()
	blk := newTestBlock(t)
	b.AddBlock(blk)

	p, ok := b.BumpAllocate(object.New(object.None{}), false)
	if !ok {
		t.Fatalf("expected allocation to succeed with a block present")
	}
	if p.IsNull() {
		t.Fatalf("expected a non-null pointer")
	}

	empty := New()
	if _, ok := empty.BumpAllocate(object.New(object.None{}), false); ok {
		t.Fatalf("expected allocation without any block to fail")
	}
}

func TestDrainBlocksEmptiesTheBucket(t *testing.T) {
	b := New()
	b.AddBlock(newTestBlock(t))
	b.AddBlock(newTestBlock(t))

	drained := b.DrainBlocks()
	if len(drained) != 2 {
		t.Fatalf("expected 2 drained blocks, got %d", len(drained))
	}
	if b.FirstAvailableBlock() != nil {
		t.Fatalf("expected the bucket to be empty after draining")
	}
	for _, blk := range drained {
		_ = blk.Close()
	}
}

func TestScanFragmentationFlagsHighHoleCounts(t *testing.T) {
	b := New()
	blk := newTestBlock(t)
	b.AddBlock(blk)

	for line := uint32(1); line < layout.LinesPerBlock; line += 2 {
		blk.MarkObject(line * layout.ObjectsPerLine)
	}

	fragmented := b.ScanFragmentation()
	if len(fragmented) != 1 {
		t.Fatalf("expected 1 fragmented block, got %d", len(fragmented))
	}
	if !blk.IsFragmented() {
		t.Fatalf("expected the block to be flagged fragmented")
	}
}

func TestIteratorWalksAllBlocks(t *testing.T) {
	b := New()
	b.AddBlock(newTestBlock(t))
	b.AddBlock(newTestBlock(t))

	count := 0
	it := b.Iter()
	for {
		_, ok := it.Next()
		if !ok {
			break
		}
		count++
	}
	if count != 2 {
		t.Fatalf("expected to iterate 2 blocks, got %d", count)
	}
}

func TestEvacuatedAndPromotedCounters(t *testing.T) {
	b := New()
	b.RecordEvacuation()
	b.RecordEvacuation()
	b.RecordPromotion()

	if b.Evacuated() != 2 || b.Promoted() != 1 {
		t.Fatalf("unexpected counters: evacuated=%d promoted=%d", b.Evacuated(), b.Promoted())
	}

	b.ResetCounters()
	if b.Evacuated() != 0 || b.Promoted() != 0 {
		t.Fatalf("expected counters to reset to 0")
	}
}
