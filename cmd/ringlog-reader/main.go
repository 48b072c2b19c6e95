// Command ringlog-reader mounts a ringlog region and streams every
// retrievable record, oldest first, to stdout.
package main

import (
	"flag"
	"log"
	"os"

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

	storage, err := file.Open(*device, false, file.Config{
		BlockSize:  *blockSize,
		BeginBlock: *beginBlock,
		EndBlock:   *endBlock,
	})
	if err != nil {
		logger.Error("failed to open region", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	l, err := ringlog.Mount(storage, &ringlog.Options{Logger: logger})
	if err != nil {
		logger.Error("mount failed", "error", err)
		os.Exit(1)
	}

	if l.IsEmpty() {
		logger.Warn("log is empty, nothing to read")
		return
	}

	count := 0
	for offset := uint64(0); offset < l.Len(); offset++ {
		_, err := l.Read(offset, func(payload []byte) {
			os.Stdout.Write(payload)
		})
		if err != nil {
			if ringlog.IsKind(err, ringlog.KindNotValidBlock) {
				break
			}
			logger.Error("read failed", "error", err, "offset", offset)
			os.Exit(1)
		}
		count++
	}

	logger.Info("read records", "count", count)
}
