package main

import (
	"blockmem/pkg/buffer"
	"blockmem/pkg/mapped"
	"blockmem/pkg/storage/disk"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	DefaultOut        = "./blockmem_data/tone.bin"
	DefaultRate       = 8000
	DefaultFreq       = 440.0
	DefaultBlockSize  = 80 // 每次追加的采样数
	DefaultHighWater  = 8
	DefaultLowWater   = 4
	DefaultSeconds    = 2.0
	recordTag         = "TONE"
	bytesPerSample    = 1
	unsignedPCMCenter = 128
)

func main() {
	out := flag.String("out", DefaultOut, "output file")
	freq := flag.Float64("freq", DefaultFreq, "tone frequency in Hz")
	rate := flag.Int("rate", DefaultRate, "sample rate")
	seconds := flag.Float64("seconds", DefaultSeconds, "duration in seconds")
	high := flag.Int("high", DefaultHighWater, "resident page high water mark")
	low := flag.Int("low", DefaultLowWater, "resident page low water mark")
	mem := flag.Bool("mem", false, "keep the backing file in memory (dry run)")
	verbose := flag.Bool("v", false, "log page evictions")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var back disk.BackingFile
	if *mem {
		back = disk.NewMemBacking(nil)
	} else {
		f, err := disk.OpenFile(*out)
		if err != nil {
			log.Fatalf("❌ open %s: %v", *out, err)
		}
		back = f
	}

	store, err := buffer.NewPagedStore(back, buffer.WithWatermarks(*high, *low), buffer.WithLogger(logger))
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	start := time.Now()
	rec, err := writeTone(store, *freq, *rate, *seconds)
	if err != nil {
		log.Fatalf("❌ write tone: %v", err)
	}
	// Save 之前取快照，Save 会写回剩下的脏页
	size := store.Len()
	if err := rec.Save(); err != nil {
		log.Fatalf("❌ save: %v", err)
	}
	st := store.Stats()

	fmt.Printf("✅ wrote %s (%s allocated, %d bytes used) in %.4f sec\n",
		target(*out, *mem), humanize.Bytes(uint64(size)), rec.End(), time.Since(start).Seconds())
	fmt.Printf("   pages=%d hits=%d faults=%d evictions=%d writebacks=%d\n",
		store.PageCount(), st.Hits, st.Faults, st.Evictions, st.WriteBacks)
}

// writeTone 布局：4 字节标识、采样率、采样数，然后是 8 位无符号 PCM 采样
// 采样按块追加到数组末尾，演示 Grow 的用法
func writeTone(store *buffer.PagedStore, freq float64, rate int, seconds float64) (*mapped.File, error) {
	f, err := mapped.New(store)
	if err != nil {
		return nil, err
	}

	tag, err := mapped.NewFourCCPtr(f)
	if err != nil {
		return nil, err
	}
	if err := tag.Write(recordTag); err != nil {
		return nil, err
	}
	ratePtr, err := mapped.NewInt32Ptr(f)
	if err != nil {
		return nil, err
	}
	if err := ratePtr.Write(int32(rate)); err != nil {
		return nil, err
	}
	countPtr, err := mapped.NewInt32Ptr(f)
	if err != nil {
		return nil, err
	}
	samples, err := mapped.NewByteArrayPtr(f, 0)
	if err != nil {
		return nil, err
	}

	total := int(float64(rate) * seconds)
	block := make([]byte, 0, DefaultBlockSize*bytesPerSample)
	for i := 0; i < total; i++ {
		t := float64(i) / float64(rate)
		v := math.Sin(2 * math.Pi * freq * t)
		block = append(block, byte(unsignedPCMCenter+int(math.Round(v*127))))
		if len(block) == cap(block) || i == total-1 {
			ok, err := samples.Append(block)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("sample array is no longer at the end of the file")
			}
			block = block[:0]
		}
	}

	if err := countPtr.Write(int32(samples.Len() / bytesPerSample)); err != nil {
		return nil, err
	}
	return f, nil
}

func target(out string, mem bool) string {
	if mem {
		return "(memory)"
	}
	return out
}
