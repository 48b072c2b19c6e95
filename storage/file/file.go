// Package file implements a ringlog.Port backed by a plain file or
// block device, addressed with pread(2)/pwrite(2). Block MinBlockIndex
// is stored at byte offset 0 of the file, and Open sets the file's size
// to exactly (MaxBlockIndex-MinBlockIndex)*BlockSize, so the file holds
// only the region: bytes outside it are not preserved.
package file

import (
	"os"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/sys/unix"

	"github.com/behrlich/ringlog"
	"github.com/behrlich/ringlog/internal/constants"
	"github.com/behrlich/ringlog/internal/port"
)

// Storage is a file- or block-device-backed ringlog.Port. Reads and
// writes below are retried a bounded number of times to absorb the
// transient EINTR/EAGAIN a real device can surface; a failure that
// survives every retry is reported as KindCanNotPerformRead/Write.
type Storage struct {
	f         *os.File
	ownsFile  bool
	blockSize int
	minBlock  uint64
	maxBlock  uint64
	retries   uint

	closed bool
}

// Config configures Open.
type Config struct {
	// BlockSize is the fixed frame size for this region.
	BlockSize int
	// BeginBlock and EndBlock bound the region as a half-open range,
	// mirroring the reader/writer CLI flags.
	BeginBlock uint64
	EndBlock   uint64
	// Retries bounds the number of attempts for a single Read or Write
	// before giving up. Zero selects constants.DefaultReadRetries.
	Retries uint
}

// Open opens path (creating it if create is true) and wraps the block
// range described by cfg as a Port.
func Open(path string, create bool, cfg Config) (*Storage, error) {
	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, ringlog.WrapError("file.Open", ringlog.KindCanNotPerformRead, err)
	}

	s, err := newStorage(f, true, cfg)
	if err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// NewFromFile wraps an already-open *os.File without taking ownership
// of closing it (the caller retains responsibility for Close).
func NewFromFile(f *os.File, cfg Config) (*Storage, error) {
	return newStorage(f, false, cfg)
}

func newStorage(f *os.File, ownsFile bool, cfg Config) (*Storage, error) {
	if cfg.BlockSize <= 0 {
		return nil, ringlog.NewError("file.Open", ringlog.KindTooSmallRegion, "block size must be positive")
	}
	if cfg.EndBlock < cfg.BeginBlock+2 {
		return nil, ringlog.NewError("file.Open", ringlog.KindTooSmallRegion, "region must hold at least 2 blocks")
	}

	retries := cfg.Retries
	if retries == 0 {
		retries = constants.DefaultReadRetries
	}

	s := &Storage{
		f:         f,
		ownsFile:  ownsFile,
		blockSize: cfg.BlockSize,
		minBlock:  cfg.BeginBlock,
		maxBlock:  cfg.EndBlock,
		retries:   retries,
	}

	size := int64(cfg.EndBlock-cfg.BeginBlock) * int64(cfg.BlockSize)
	if err := f.Truncate(size); err != nil {
		if info, statErr := f.Stat(); statErr != nil || info.Size() < size {
			return nil, ringlog.WrapError("file.Open", ringlog.KindCanNotPerformWrite, err)
		}
	}

	return s, nil
}

func (s *Storage) inRange(blockIndex uint64) bool {
	return blockIndex >= s.minBlock && blockIndex < s.maxBlock
}

func (s *Storage) byteOffset(blockIndex uint64) int64 {
	return int64(blockIndex-s.minBlock) * int64(s.blockSize)
}

// Read implements ringlog.Port.
func (s *Storage) Read(blockIndex uint64, out []byte) (int, error) {
	if !s.inRange(blockIndex) {
		return 0, ringlog.NewBlockError("file.Read", blockIndex, ringlog.KindBlockOutOfRange, "block index out of range")
	}
	if len(out) < s.blockSize {
		return 0, ringlog.NewBlockError("file.Read", blockIndex, ringlog.KindNotEnoughSpace, "output buffer smaller than block size")
	}

	off := s.byteOffset(blockIndex)
	var n int
	err := retry.Do(
		func() error {
			got, err := unix.Pread(int(s.f.Fd()), out[:s.blockSize], off)
			if err != nil {
				return err
			}
			n = got
			if n != s.blockSize {
				return errShortIO
			}
			return nil
		},
		retry.Attempts(s.retries),
		retry.Delay(time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return 0, ringlog.NewBlockError("file.Read", blockIndex, ringlog.KindCanNotPerformRead, err.Error())
	}
	return n, nil
}

// Write implements ringlog.Port.
func (s *Storage) Write(blockIndex uint64, data []byte) (int, error) {
	if !s.inRange(blockIndex) {
		return 0, ringlog.NewBlockError("file.Write", blockIndex, ringlog.KindBlockOutOfRange, "block index out of range")
	}
	if len(data) != s.blockSize {
		return 0, ringlog.NewBlockError("file.Write", blockIndex, ringlog.KindDataLenMismatch, "data length does not equal block size")
	}

	off := s.byteOffset(blockIndex)
	var n int
	err := retry.Do(
		func() error {
			got, err := unix.Pwrite(int(s.f.Fd()), data, off)
			if err != nil {
				return err
			}
			n = got
			if n != s.blockSize {
				return errShortIO
			}
			return nil
		},
		retry.Attempts(s.retries),
		retry.Delay(time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return 0, ringlog.NewBlockError("file.Write", blockIndex, ringlog.KindCanNotPerformWrite, err.Error())
	}
	return n, nil
}

// BlockSize implements ringlog.Port.
func (s *Storage) BlockSize() int { return s.blockSize }

// MinBlockIndex implements ringlog.Port.
func (s *Storage) MinBlockIndex() uint64 { return s.minBlock }

// MaxBlockIndex implements ringlog.Port.
func (s *Storage) MaxBlockIndex() uint64 { return s.maxBlock }

// Close closes the underlying file if Open created it.
func (s *Storage) Close() error {
	if s.closed || !s.ownsFile {
		return nil
	}
	s.closed = true
	return s.f.Close()
}

var errShortIO = shortIOError{}

type shortIOError struct{}

func (shortIOError) Error() string { return "short read/write: block boundary not aligned" }

var _ port.Port = (*Storage)(nil)
