// Command ringlog-writer appends stdin, chunked into payload-sized
// records, onto a ringlog region backed by a file or block device.
package main

import (
	"encoding/binary"
	"flag"
	"io"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/behrlich/ringlog"
	"github.com/behrlich/ringlog/internal/constants"
	"github.com/behrlich/ringlog/internal/logging"
	"github.com/behrlich/ringlog/storage/file"
)

func main() {
	var (
		device     = flag.String("device", "", "path to the backing file or block device")
		beginBlock = flag.Uint64("begin-block", constants.DefaultBeginBlock, "first block index of the region (config block)")
		endBlock   = flag.Uint64("end-block", 0, "one past the last block index of the region (required)")
		blockSize  = flag.Int("block-size", constants.DefaultBlockSize, "fixed frame size in bytes")
		formatOnly = flag.Bool("format-only", false, "format the region with a fresh instance id and exit")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *device == "" || *endBlock == 0 {
		log.Fatal("both --device and --end-block are required")
	}

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)

	storage, err := file.Open(*device, true, file.Config{
		BlockSize:  *blockSize,
		BeginBlock: *beginBlock,
		EndBlock:   *endBlock,
	})
	if err != nil {
		logger.Error("failed to open region", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	fsID := freshFsID()
	opts := &ringlog.Options{Logger: logger}

	if *formatOnly {
		if _, err := ringlog.Format(storage, fsID, opts); err != nil {
			logger.Error("format failed", "error", err)
			os.Exit(1)
		}
		logger.Info("formatted region", "fs_id", fsID)
		return
	}

	l, err := ringlog.Mount(storage, opts)
	if ringlog.IsKind(err, ringlog.KindInvalidHeaderBlock) {
		logger.Info("no valid config block, formatting region", "fs_id", fsID)
		l, err = ringlog.Format(storage, fsID, opts)
	}
	if err != nil {
		logger.Error("mount failed", "error", err)
		os.Exit(1)
	}

	chunk := make([]byte, l.DataBlockSize())
	appended := 0
	for {
		n, readErr := io.ReadFull(os.Stdin, chunk)
		if n > 0 {
			if n < len(chunk) {
				for i := n; i < len(chunk); i++ {
					chunk[i] = 0
				}
			}
			if _, err := l.Append(func(buf []byte) { copy(buf, chunk) }); err != nil {
				logger.Error("append failed", "error", err)
				os.Exit(1)
			}
			appended++
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			logger.Error("stdin read failed", "error", readErr)
			os.Exit(1)
		}
	}

	logger.Info("wrote records", "count", appended)
}

// freshFsID derives a fresh 32-bit instance id from random uuid bytes,
// giving every writer invocation a practically-unique identity without
// requiring caller-supplied entropy.
func freshFsID() uint32 {
	id := uuid.New()
	return binary.BigEndian.Uint32(id[:4])
}
