package messages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"heroes/internal/storage"
)

// ArchivePrefix is the object key prefix used for archived logs.
const ArchivePrefix = "messages/"

// Archive uploads the current log content as a plain-text object and returns its key.
// Keys are derived from now in UTC so archives sort chronologically.
func Archive(ctx context.Context, store storage.Storage, log *Log, now time.Time) (string, error) {
	entries := log.Messages()
	if len(entries) == 0 {
		return "", ErrEmptyLog
	}

	body := strings.Join(entries, "\n") + "\n"
	key := ArchivePrefix + now.UTC().Format("20060102T150405.000000000Z") + ".log"

	info, err := store.Put(ctx, key, strings.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "text/plain; charset=utf-8",
		Metadata: map[string]string{
			"entries": fmt.Sprint(len(entries)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("archive messages: %w", err)
	}
	return info.Key, nil
}
