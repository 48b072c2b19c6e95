// Package constants holds default configuration values shared by the
// public ringlog API and the reference storage back ends.
package constants

// Layout defaults
const (
	// DefaultBlockSize is the default on-disk frame size in bytes.
	DefaultBlockSize = 512

	// HeaderSize is the fixed size of the crc+fs_id+seq_id frame header,
	// in bytes. Every frame's payload capacity is BlockSize - HeaderSize.
	HeaderSize = 14

	// MinBlockSize is the smallest block size the frame codec supports
	// (must fit the header plus at least one payload byte).
	MinBlockSize = 16

	// ConfigVersion is the version stamp written to the config block's
	// payload at format time.
	ConfigVersion = 0x01
)

// Default region bounds. The reference CLIs use DefaultBeginBlock for
// --begin-block; they do not use DefaultEndBlock, since --end-block is
// required.
const (
	DefaultBeginBlock = 2048
	DefaultEndBlock   = 1024 * 1024 * 1024 * 3 / DefaultBlockSize
)

// DefaultReadRetries is the number of attempts the file-backed port
// makes for a single read or write before surfacing a transient I/O
// error, including the initial attempt.
const DefaultReadRetries = 4
