// Package recovery implements the mount-time scan that locates the
// wraparound point of a ringlog data region in O(log N) block reads.
package recovery

import (
	"github.com/behrlich/ringlog/internal/frame"
	"github.com/behrlich/ringlog/internal/port"
)

// Result is the reconstructed log state after a scan.
type Result struct {
	Cursor   uint64
	NextSeq  uint64
	IsEmpty  bool
	IsFull   bool
}

// Scan reconstructs (cursor, next_seq, is_empty, is_full) for the data
// range [dataMin, dataMax) of p, for the instance identified by fsID.
// It issues O(log(dataMax-dataMin)) block reads.
func Scan(p port.Port, fsID uint32, dataMin, dataMax uint64) (Result, error) {
	if dataMax < dataMin+2 {
		return Result{}, &ScanError{Kind: port.KindTooSmallRegion}
	}

	buf := make([]byte, p.BlockSize())

	readInfo := func(idx uint64) (frame.Info, error) {
		if _, err := p.Read(idx, buf); err != nil {
			return frame.Info{}, err
		}
		return frame.Decode(buf), nil
	}

	lo := dataMin
	hi := dataMax
	n := hi - lo

	left, err := readInfo(lo)
	if err != nil {
		return Result{}, err
	}
	if !belongs(left, fsID) {
		// Storage wasn't formatted for this instance, or is freshly
		// formatted: treat the first data block mismatching as empty,
		// conservatively, rather than searching further (§9 open
		// question: format implies fresh log).
		return Result{Cursor: dataMin, NextSeq: 0, IsEmpty: true}, nil
	}

	right, err := readInfo(hi - 1)
	if err != nil {
		return Result{}, err
	}
	if belongs(right, fsID) && right.SeqID > left.SeqID {
		// No wraparound within the data range: the region is exactly
		// full and the oldest block sits at dataMin.
		return Result{Cursor: dataMin, NextSeq: right.SeqID + 1, IsFull: true}, nil
	}

	// A wraparound (or a truncated tail from a torn write) exists
	// somewhere in (lo, hi-1). is_full is decided by whether the last
	// data block belongs to this instance, observed right here — it
	// does not change as the search narrows.
	isFull := belongs(right, fsID)
	lastID := left.SeqID

	for hi-lo > 2 {
		mid := lo + (hi-lo)/2
		midInfo, err := readInfo(mid)
		if err != nil {
			return Result{}, err
		}

		if canHaveTail(midInfo, right, fsID) {
			lo = mid
			lastID = midInfo.SeqID
		} else {
			hi = mid + 1
			right = midInfo
		}
	}

	// hi-lo is now 1 or 2. lo points at the newest belonging block
	// found so far; if the gap is 2, the true newest block may be the
	// one immediately to its right (the boundary case where the ring
	// has not yet wrapped and the newest write landed right after lo).
	if hi-lo == 2 {
		candidate, err := readInfo(lo + 1)
		if err != nil {
			return Result{}, err
		}
		if belongs(candidate, fsID) && candidate.SeqID > lastID {
			lo++
			lastID = candidate.SeqID
		}
	}

	// Use the normalized (lo - dataMin + 1) mod n form, not
	// lo % dataMax + dataMin: the latter is wrong whenever dataMin > 0
	// (an off-by-min bug some revisions of the original carried).
	cursor := (lo-dataMin+1)%n + dataMin

	return Result{
		Cursor:  cursor,
		NextSeq: lastID + 1,
		IsEmpty: false,
		IsFull:  isFull,
	}, nil
}

func belongs(info frame.Info, fsID uint32) bool {
	return info.Belongs(fsID)
}

// canHaveTail reports whether the newest belonging block could still
// lie at or to the right of left, given the current best-known right
// boundary. Non-belonging blocks can never hold a newer tail.
func canHaveTail(left, right frame.Info, fsID uint32) bool {
	if !belongs(left, fsID) {
		return false
	}
	if !belongs(right, fsID) {
		return true
	}
	return left.SeqID > right.SeqID
}

// ScanError reports a failure encountered before any block could be
// evaluated (region shape), as opposed to a port I/O failure which is
// returned unchanged from the underlying Port.
type ScanError struct {
	Kind port.Kind
}

func (e *ScanError) Error() string {
	return "recovery: " + string(e.Kind)
}
