package pipeline

// DefaultBlockSize is the number of outer-loop indices handed to a worker
// at a time when no block size is configured.
const DefaultBlockSize = 32

// Block is a half-open range [Lo, Hi) of outer-loop indices.
type Block struct {
	Lo int
	Hi int
}

// Len returns the number of indices in the block.
func (b Block) Len() int {
	return b.Hi - b.Lo
}

// Partition splits [0, n) into contiguous blocks of at most blockSize
// indices. The last block holds the remainder. A non-positive blockSize
// falls back to DefaultBlockSize.
func Partition(n, blockSize int) []Block {
	if n <= 0 {
		return nil
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	blocks := make([]Block, 0, (n+blockSize-1)/blockSize)
	for lo := 0; lo < n; lo += blockSize {
		blocks = append(blocks, Block{Lo: lo, Hi: min(lo+blockSize, n)})
	}
	return blocks
}
