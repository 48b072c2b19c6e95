// Package mem implements an in-memory ringlog.Port backed by a single
// contiguous byte slice, for tests and for workloads that never need
// the data to survive process restart.
package mem

import (
	"github.com/behrlich/ringlog"
	"github.com/behrlich/ringlog/internal/port"
)

// Storage is an in-memory block-addressed region. It is not safe for
// concurrent use; like every ringlog.Port, it is meant to be owned by
// exactly one Log.
type Storage struct {
	data      []byte
	blockSize int
	minBlock  uint64
	maxBlock  uint64
}

// New creates a Storage of size bytes, addressed as blocks of
// blockSize bytes starting at block index 0. size must be a multiple
// of blockSize and hold at least 2 blocks.
func New(size, blockSize int) (*Storage, error) {
	return NewAt(size, blockSize, 0)
}

// NewAt is like New but the region's first block is minBlock instead
// of 0, mirroring a sub-region carved out of a larger device.
func NewAt(size, blockSize int, minBlock uint64) (*Storage, error) {
	if blockSize <= 0 || size < 2*blockSize {
		return nil, ringlog.NewError("mem.New", ringlog.KindTooSmallRegion, "region must hold at least 2 blocks")
	}
	if size%blockSize != 0 {
		return nil, ringlog.NewError("mem.New", ringlog.KindDataLenMismatch, "size must be a multiple of block size")
	}

	numBlocks := uint64(size / blockSize)
	return &Storage{
		data:      make([]byte, size),
		blockSize: blockSize,
		minBlock:  minBlock,
		maxBlock:  minBlock + numBlocks,
	}, nil
}

func (s *Storage) inRange(blockIndex uint64) bool {
	return blockIndex >= s.minBlock && blockIndex < s.maxBlock
}

func (s *Storage) offset(blockIndex uint64) int {
	return int(blockIndex-s.minBlock) * s.blockSize
}

// Read implements ringlog.Port.
func (s *Storage) Read(blockIndex uint64, out []byte) (int, error) {
	if !s.inRange(blockIndex) {
		return 0, ringlog.NewBlockError("mem.Read", blockIndex, ringlog.KindBlockOutOfRange, "block index out of range")
	}
	if len(out) < s.blockSize {
		return 0, ringlog.NewBlockError("mem.Read", blockIndex, ringlog.KindNotEnoughSpace, "output buffer smaller than block size")
	}
	off := s.offset(blockIndex)
	n := copy(out, s.data[off:off+s.blockSize])
	return n, nil
}

// Write implements ringlog.Port.
func (s *Storage) Write(blockIndex uint64, data []byte) (int, error) {
	if !s.inRange(blockIndex) {
		return 0, ringlog.NewBlockError("mem.Write", blockIndex, ringlog.KindBlockOutOfRange, "block index out of range")
	}
	if len(data) != s.blockSize {
		return 0, ringlog.NewBlockError("mem.Write", blockIndex, ringlog.KindDataLenMismatch, "data length does not equal block size")
	}
	off := s.offset(blockIndex)
	n := copy(s.data[off:off+s.blockSize], data)
	return n, nil
}

// BlockSize implements ringlog.Port.
func (s *Storage) BlockSize() int { return s.blockSize }

// MinBlockIndex implements ringlog.Port.
func (s *Storage) MinBlockIndex() uint64 { return s.minBlock }

// MaxBlockIndex implements ringlog.Port.
func (s *Storage) MaxBlockIndex() uint64 { return s.maxBlock }

var _ port.Port = (*Storage)(nil)
