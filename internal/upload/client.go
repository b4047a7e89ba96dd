package upload

import (
	"context"
	"fmt"
	"io"
)

// ChunkFunc delivers one chunk to the server. Implementations typically
// wrap an HTTP call against the uploads endpoint.
type ChunkFunc func(ctx context.Context, index int, data []byte) error

// ProgressFunc observes progress after each delivered chunk.
type ProgressFunc func(sentChunks, totalChunks int, sentBytes, totalBytes int64)

type SendStats struct {
	Chunks int
	Bytes  int64
}

// Send splits size bytes from r into chunkSize pieces and delivers them in
// index order. A failed chunk stops the transfer immediately; the next
// index is never attempted. A successful transfer makes exactly
// ceil(size/chunkSize) calls.
func Send(ctx context.Context, r io.Reader, size int64, chunkSize int64, send ChunkFunc, progress ProgressFunc) (SendStats, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if size < 0 {
		return SendStats{}, fmt.Errorf("upload: negative size %d", size)
	}

	var stats SendStats
	total := TotalChunks(size, chunkSize)
	buf := make([]byte, chunkSize)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		want := chunkSize
		if i == total-1 {
			want = size - int64(total-1)*chunkSize
		}
		if _, err := io.ReadFull(r, buf[:want]); err != nil {
			return stats, fmt.Errorf("read chunk %d: %w", i, err)
		}
		if err := send(ctx, i, buf[:want]); err != nil {
			return stats, fmt.Errorf("chunk %d: %w", i, err)
		}
		stats.Chunks++
		stats.Bytes += want
		if progress != nil {
			progress(stats.Chunks, total, stats.Bytes, size)
		}
	}
	return stats, nil
}
