// Package extraction defines the boundary to the external audio-to-observation
// capability. The intake pipeline is indifferent to whether the extractor runs
// in-process, over RPC, or as a subprocess; it only sees this interface and
// the normalized error taxonomy.
package extraction

import (
	"context"

	"zoowatch/internal/submission/models"
)

//go:generate mockgen -source=extractor.go -destination=mocks/extractor_mock.go -package=mocks Extractor

// Extractor converts raw audio bytes into a structured observation, or fails
// with an ExtractionError. Implementations must honor the context deadline.
type Extractor interface {
	Extract(ctx context.Context, audio []byte, date, locale string) (*models.StructuredObservation, error)
}
