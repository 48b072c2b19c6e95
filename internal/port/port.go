// Package port defines the block-addressed storage contract ringlog's
// core consumes, and the error kinds its implementations report.
package port

// Port is a sector-addressed capability the log core issues full-block
// reads and writes against. Implementations must block the caller
// until the I/O completes or fails; the core never seeks and never
// issues a partial-block read or write.
type Port interface {
	// Read reads exactly BlockSize() bytes into the start of out.
	Read(blockIndex uint64, out []byte) (int, error)

	// Write writes exactly len(data) bytes, which must equal
	// BlockSize(), at blockIndex.
	Write(blockIndex uint64, data []byte) (int, error)

	// BlockSize is the fixed frame size for this mounted region.
	BlockSize() int

	// MinBlockIndex and MaxBlockIndex bound the mounted region as a
	// half-open range [MinBlockIndex, MaxBlockIndex).
	MinBlockIndex() uint64
	MaxBlockIndex() uint64
}

// Kind categorizes the errors a Port (or the log core built on top of
// one) can report. Kind values are stable identifiers, not messages.
type Kind string

const (
	// KindTooSmallRegion means data_max - data_min < 2.
	KindTooSmallRegion Kind = "too_small_region"

	// KindInvalidHeaderBlock means the config block failed its CRC.
	KindInvalidHeaderBlock Kind = "invalid_header_block"

	// KindBlockOutOfRange means a block index fell outside
	// [MinBlockIndex, MaxBlockIndex).
	KindBlockOutOfRange Kind = "block_out_of_range"

	// KindDataLenMismatch means a write's data did not have length
	// exactly BlockSize().
	KindDataLenMismatch Kind = "data_len_not_equal_to_block_size"

	// KindNotEnoughSpace means a read's output buffer was smaller than
	// BlockSize().
	KindNotEnoughSpace Kind = "not_enough_space"

	// KindCanNotPerformRead means a transient I/O read failure
	// persisted after retries.
	KindCanNotPerformRead Kind = "can_not_perform_read"

	// KindCanNotPerformWrite means a transient I/O write failure
	// persisted after retries.
	KindCanNotPerformWrite Kind = "can_not_perform_write"

	// KindNotValidBlock means a read's target block failed its CRC or
	// belongs to a different instance.
	KindNotValidBlock Kind = "not_valid_block"

	// KindConfigWriteFailed means the config block could not be
	// committed during format.
	KindConfigWriteFailed Kind = "config_write_failed"
)
