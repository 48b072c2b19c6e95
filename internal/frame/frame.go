// Package frame encodes and decodes the on-disk block layout shared by
// every ringlog back end: a CRC-16/CDMA2000 checksum, an instance id,
// a monotonic sequence id, and an opaque payload.
//
// Layout (big-endian, no padding):
//
//	offset 0,  len 2 : crc     (CRC-16/CDMA2000 over bytes [2:])
//	offset 2,  len 4 : fs_id   (owning instance id)
//	offset 6,  len 8 : seq_id  (monotonic per-instance sequence number)
//	offset 14, len N : payload (opaque caller bytes)
package frame

import (
	"encoding/binary"

	"github.com/behrlich/ringlog/internal/constants"
)

// HeaderSize is the fixed size of the crc+fs_id+seq_id header, in bytes.
const HeaderSize = constants.HeaderSize

const (
	crcOffset   = 0
	fsIDOffset  = 2
	seqIDOffset = 6
	dataOffset  = HeaderSize
)

// DataSize returns the payload capacity of a frame occupying a block of
// the given size. Callers should always derive payload sizes from this
// helper rather than hardcoding the header size.
func DataSize(blockSize int) int {
	return blockSize - HeaderSize
}

// Encode fills buf (len(buf) == block size) with a valid frame: fill is
// invoked with the payload region so the caller can populate it, then
// fs_id, seq_id and the CRC are written. buf must be at least
// HeaderSize+1 bytes.
func Encode(buf []byte, fsID uint32, seqID uint64, fill func(payload []byte)) {
	payload := buf[dataOffset:]
	if fill != nil {
		fill(payload)
	}

	binary.BigEndian.PutUint32(buf[fsIDOffset:seqIDOffset], fsID)
	binary.BigEndian.PutUint64(buf[seqIDOffset:dataOffset], seqID)

	crc := checksum(buf[fsIDOffset:])
	binary.BigEndian.PutUint16(buf[crcOffset:fsIDOffset], crc)
}

// Info describes the decoded header of a frame.
type Info struct {
	FsID  uint32
	SeqID uint64
	Valid bool
}

// Decode reads the header of a frame. It never errors; when the stored
// CRC does not match the recomputed one, Valid is false and SeqID is
// reported as 0 so callers cannot accidentally trust it.
func Decode(buf []byte) Info {
	stored := binary.BigEndian.Uint16(buf[crcOffset:fsIDOffset])
	computed := checksum(buf[fsIDOffset:])

	if stored != computed {
		return Info{Valid: false}
	}

	return Info{
		FsID:  binary.BigEndian.Uint32(buf[fsIDOffset:seqIDOffset]),
		SeqID: binary.BigEndian.Uint64(buf[seqIDOffset:dataOffset]),
		Valid: true,
	}
}

// Payload returns the payload region of a decoded frame buffer.
func Payload(buf []byte) []byte {
	return buf[dataOffset:]
}

// Belongs reports whether a decoded frame is valid and owned by fsID.
func (i Info) Belongs(fsID uint32) bool {
	return i.Valid && i.FsID == fsID
}
