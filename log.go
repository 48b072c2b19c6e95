// Package ringlog implements an append-only circular block log: fixed
// size records are appended durably to a block-addressed backing
// region and can be read back, oldest to newest, after a crash and
// remount. See SPEC_FULL.md for the full design.
package ringlog

import (
	"encoding/binary"
	"time"

	"github.com/behrlich/ringlog/internal/constants"
	"github.com/behrlich/ringlog/internal/frame"
	"github.com/behrlich/ringlog/internal/port"
	"github.com/behrlich/ringlog/internal/recovery"
)

// ConfigVersion is the version stamp written to the config block's
// payload at format time.
const ConfigVersion uint32 = constants.ConfigVersion

// Logger is the minimal logging interface Options accepts; satisfied
// by *internal/logging.Logger and by the standard library *log.Logger.
type Logger interface {
	Printf(format string, args ...interface{})
}

// Options carries optional collaborators for Format/Mount/MountWithID.
// A nil Options (or nil fields within one) falls back to a disabled
// logger and a NoOpObserver, matching the teacher's Options{Context,
// Logger, Observer} pattern.
type Options struct {
	Logger   Logger
	Observer Observer
}

func (o *Options) logger() Logger {
	if o == nil || o.Logger == nil {
		return nil
	}
	return o.Logger
}

func (o *Options) observer() Observer {
	if o == nil || o.Observer == nil {
		return NoOpObserver{}
	}
	return o.Observer
}

// Log is a mounted ringlog instance: the append cursor, wraparound
// arithmetic, and empty/full tracking described in SPEC_FULL.md §3-4.
//
// A Log is single-owner: it is not safe for concurrent use by more
// than one goroutine, and its callbacks (passed to Append/Read) must
// not call back into the Log they were invoked from.
type Log struct {
	p port.Port

	fsID    uint32
	cursor  uint64
	nextSeq uint64
	isEmpty bool
	isFull  bool

	dataMin uint64
	dataMax uint64
	n       uint64

	buf []byte

	logger   Logger
	observer Observer
}

func regionBounds(p port.Port) (dataMin, dataMax uint64, err error) {
	regionMin := p.MinBlockIndex()
	regionMax := p.MaxBlockIndex()
	dataMin = regionMin + 1
	dataMax = regionMax
	if dataMax < dataMin+2 {
		return 0, 0, NewError("", KindTooSmallRegion, "data range must hold at least 2 blocks")
	}
	return dataMin, dataMax, nil
}

func newLog(p port.Port, opts *Options) *Log {
	return &Log{
		p:        p,
		buf:      make([]byte, p.BlockSize()),
		logger:   opts.logger(),
		observer: opts.observer(),
	}
}

// Format writes a fresh config block under fsID and returns an empty,
// freshly mounted Log. It fails with KindTooSmallRegion if the region
// cannot hold at least 2 data blocks, or KindConfigWriteFailed if the
// port rejects the config block write.
func Format(p port.Port, fsID uint32, opts *Options) (*Log, error) {
	dataMin, dataMax, err := regionBounds(p)
	if err != nil {
		return nil, err
	}

	l := newLog(p, opts)
	l.fsID = fsID
	l.dataMin = dataMin
	l.dataMax = dataMax
	l.n = dataMax - dataMin
	l.cursor = dataMin
	l.nextSeq = 0
	l.isEmpty = true
	l.isFull = false

	configBuf := make([]byte, p.BlockSize())
	frame.Encode(configBuf, fsID, 0, func(payload []byte) {
		binary.BigEndian.PutUint32(payload[:4], ConfigVersion)
	})

	if _, err := p.Write(p.MinBlockIndex(), configBuf); err != nil {
		werr := NewBlockError("Format", p.MinBlockIndex(), KindConfigWriteFailed, "config block write failed")
		werr.Inner = err
		return nil, werr
	}

	if l.logger != nil {
		l.logger.Printf("ringlog: formatted fs_id=%d cursor=%d", fsID, l.cursor)
	}
	return l, nil
}

func readConfig(p port.Port) (frame.Info, error) {
	buf := make([]byte, p.BlockSize())
	if _, err := p.Read(p.MinBlockIndex(), buf); err != nil {
		return frame.Info{}, err
	}
	return frame.Decode(buf), nil
}

func (l *Log) applyRecovery(res recovery.Result) {
	l.cursor = res.Cursor
	l.nextSeq = res.NextSeq
	l.isEmpty = res.IsEmpty
	l.isFull = res.IsFull
}

// Mount reads the config block to derive the instance id, then
// recovers the cursor and sequence id by scanning the data range. It
// fails with KindInvalidHeaderBlock if the config block is not valid.
func Mount(p port.Port, opts *Options) (*Log, error) {
	dataMin, dataMax, err := regionBounds(p)
	if err != nil {
		return nil, err
	}

	info, err := readConfig(p)
	if err != nil {
		return nil, WrapError("Mount", KindCanNotPerformRead, err)
	}
	if !info.Valid {
		return nil, NewError("Mount", KindInvalidHeaderBlock, "config block failed CRC")
	}

	l := newLog(p, opts)
	l.fsID = info.FsID
	l.dataMin = dataMin
	l.dataMax = dataMax
	l.n = dataMax - dataMin

	res, err := recovery.Scan(p, l.fsID, dataMin, dataMax)
	if err != nil {
		return nil, WrapError("Mount", KindCanNotPerformRead, err)
	}
	l.applyRecovery(res)

	if l.logger != nil {
		l.logger.Printf("ringlog: mounted fs_id=%d cursor=%d next_seq=%d empty=%v full=%v",
			l.fsID, l.cursor, l.nextSeq, l.isEmpty, l.isFull)
	}
	return l, nil
}

// MountWithID mounts the region expecting instance id fsID. If the
// config block is absent or stamped with a different id, the region is
// reformatted under fsID; otherwise recovery proceeds as in Mount.
func MountWithID(p port.Port, fsID uint32, opts *Options) (*Log, error) {
	dataMin, dataMax, err := regionBounds(p)
	if err != nil {
		return nil, err
	}

	info, err := readConfig(p)
	if err != nil {
		return nil, WrapError("MountWithID", KindCanNotPerformRead, err)
	}
	if !info.Valid || info.FsID != fsID {
		return Format(p, fsID, opts)
	}

	l := newLog(p, opts)
	l.fsID = fsID
	l.dataMin = dataMin
	l.dataMax = dataMax
	l.n = dataMax - dataMin

	res, err := recovery.Scan(p, fsID, dataMin, dataMax)
	if err != nil {
		return nil, WrapError("MountWithID", KindCanNotPerformRead, err)
	}
	l.applyRecovery(res)
	return l, nil
}

// advanceCursor moves the cursor forward by one slot in the data ring.
// Uses the normalized (cursor - dataMin + 1) mod N form; offset % max +
// min is wrong whenever dataMin > 0.
func (l *Log) advanceCursor() {
	l.cursor = (l.cursor-l.dataMin+1)%l.n + l.dataMin
}

// Append encodes a new frame at the cursor and writes it, advancing
// the cursor and sequence id on success. On failure the cursor and
// sequence id are left untouched. Returns the number of payload bytes
// written.
func (l *Log) Append(fill func(payload []byte)) (int, error) {
	start := time.Now()

	frame.Encode(l.buf, l.fsID, l.nextSeq, fill)

	_, err := l.p.Write(l.cursor, l.buf)
	latency := uint64(time.Since(start).Nanoseconds())
	dataSize := frame.DataSize(l.p.BlockSize())

	if err != nil {
		l.observer.ObserveAppend(0, latency, false)
		return 0, WrapError("Append", KindCanNotPerformWrite, err)
	}

	l.isEmpty = false
	if l.cursor == l.dataMax-1 {
		l.isFull = true
	}
	l.advanceCursor()
	l.nextSeq++

	l.observer.ObserveAppend(uint64(dataSize), latency, true)
	return dataSize, nil
}

// Read translates logicalOffset (0 = oldest retained record) to a
// physical block, reads it, and invokes reader with the payload if the
// block is valid and belongs to this instance. Returns the number of
// payload bytes read.
func (l *Log) Read(logicalOffset uint64, reader func(payload []byte)) (int, error) {
	start := time.Now()

	var phys uint64
	if l.isFull {
		phys = (l.cursor-l.dataMin+logicalOffset)%l.n + l.dataMin
	} else {
		phys = l.dataMin + logicalOffset
	}

	_, err := l.p.Read(phys, l.buf)
	latency := uint64(time.Since(start).Nanoseconds())
	if err != nil {
		l.observer.ObserveRead(0, latency, false)
		return 0, WrapError("Read", KindCanNotPerformRead, err)
	}

	info := frame.Decode(l.buf)
	if !info.Belongs(l.fsID) {
		l.observer.ObserveRead(0, latency, false)
		return 0, NewBlockError("Read", phys, KindNotValidBlock, "block is not a valid belonging frame")
	}

	reader(frame.Payload(l.buf))
	dataSize := frame.DataSize(l.p.BlockSize())
	l.observer.ObserveRead(uint64(dataSize), latency, true)
	return dataSize, nil
}

// DataBlockSize returns the payload capacity of each record.
func (l *Log) DataBlockSize() int {
	return frame.DataSize(l.p.BlockSize())
}

// Len returns the number of records currently retrievable via Read.
func (l *Log) Len() uint64 {
	if l.isFull {
		return l.n
	}
	return l.cursor - l.dataMin
}

// Offset returns the physical block index the next Append will write.
func (l *Log) Offset() uint64 { return l.cursor }

// NextID returns the sequence id the next Append will assign.
func (l *Log) NextID() uint64 { return l.nextSeq }

// ID returns the mounted instance's fs_id.
func (l *Log) ID() uint32 { return l.fsID }

// IsEmpty reports whether no frame currently belongs to this instance.
func (l *Log) IsEmpty() bool { return l.isEmpty }

// IsFull reports whether every data block belongs to this instance
// (the ring has wrapped at least once).
func (l *Log) IsFull() bool { return l.isFull }

// NewLogMetrics returns a Metrics instance suitable for Options.Observer,
// paired with NewMetricsObserver.
func NewLogMetrics() *Metrics { return NewMetrics() }
