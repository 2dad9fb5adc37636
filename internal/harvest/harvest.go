// Package harvest drives one download run over a catalog partition.
//
// For each data record, in catalog order, the pipeline:
//
//  1. resolves the record identifier and skips it if the checkpoint has it
//  2. resolves the category from the pre-computed column or the license
//     classifier, and skips records this partition does not accept
//  3. resolves the download URL (first of "||" alternatives); a record with
//     no URL fails without network I/O
//  4. pauses for a random jitter, then fetches the file with retries
//  5. writes the metadata document and log line, then marks the record done
//
// Skipped records produce no output and no checkpoint entry. Every other
// record produces exactly one outcome; per-record failures never stop the
// run. Cancelling the context stops the run between suspension points
// without writing a partial record; the checkpoint is flushed on the way out.
package harvest

import (
	"context"
	"time"

	"github.com/vietddude/harvester/internal/core/domain"
)

// ReasonNoURL is the failure reason of records without a download URL.
const ReasonNoURL = "no download URL"

// Fetcher downloads one URL to destBase plus a resolved extension.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, destBase string) domain.Outcome
}

// Pacer pauses before every record that performs network I/O.
type Pacer interface {
	Pause(ctx context.Context) (time.Duration, error)
}

// Publisher receives one event per processed record.
type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// Inspector reads the page count of a downloaded PDF.
type Inspector interface {
	PageCount(path string) (int, error)
}

// ClassifyFunc maps a raw license string to a category and reason.
type ClassifyFunc func(raw string) (domain.Category, string)
