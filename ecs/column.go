package ecs

const (
	columnBlockSize = 64
)

// column stores components of one kind indexed by entity slot. Blocks are
// allocated individually so pointers into a column survive growth.
type column[T any] struct {
	blocks []*[columnBlockSize]T
	filled []*[columnBlockSize]bool
	count  int
}

// set writes a component at slot, growing the column as needed, and returns
// a pointer to the stored value.
func (c *column[T]) set(slot uint32, item T) *T {
	blockIdx := int(slot) / columnBlockSize
	slotIdx := int(slot) % columnBlockSize

	for blockIdx >= len(c.blocks) {
		c.blocks = append(c.blocks, new([columnBlockSize]T))
		c.filled = append(c.filled, new([columnBlockSize]bool))
	}

	if !c.filled[blockIdx][slotIdx] {
		c.filled[blockIdx][slotIdx] = true
		c.count++
	}
	c.blocks[blockIdx][slotIdx] = item
	return &c.blocks[blockIdx][slotIdx]
}

// get returns a pointer to the component at slot, or nil.
func (c *column[T]) get(slot uint32) *T {
	blockIdx := int(slot) / columnBlockSize
	slotIdx := int(slot) % columnBlockSize

	if blockIdx >= len(c.blocks) {
		return nil
	}

	if !c.filled[blockIdx][slotIdx] {
		return nil
	}

	return &c.blocks[blockIdx][slotIdx]
}

// delete empties the slot and zeroes the stored value.
func (c *column[T]) delete(slot uint32) {
	blockIdx := int(slot) / columnBlockSize
	slotIdx := int(slot) % columnBlockSize

	if blockIdx >= len(c.blocks) {
		return
	}

	if c.filled[blockIdx][slotIdx] {
		c.filled[blockIdx][slotIdx] = false
		var zero T
		c.blocks[blockIdx][slotIdx] = zero
		c.count--
	}
}

func (c *column[T]) has(slot uint32) bool {
	blockIdx := int(slot) / columnBlockSize
	slotIdx := int(slot) % columnBlockSize

	if blockIdx >= len(c.blocks) {
		return false
	}

	return c.filled[blockIdx][slotIdx]
}

func (c *column[T]) blockCount() int {
	return len(c.blocks)
}
