// Package artifact persists binary artifacts: uploaded audio recordings and
// rendered report files. Two backends exist, local filesystem and S3; the
// intake pipeline only sees this interface.
package artifact

import "context"

// Store persists artifacts by key. Keys are opaque relative paths like
// "reports/akhil_2024-05-01_1714560000000.txt".
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
