package azure

import (
	"context"
)

// BlobStorage is the blob storage surface the report service depends on.
// The mock implementation backs tests and local development without an
// Azure account.
type BlobStorage interface {
	UploadReport(ctx context.Context, filename string, data []byte) (string, error)
	DownloadReport(ctx context.Context, blobName string) ([]byte, error)
}

// Ensure BlobStorageClient implements BlobStorage interface
var _ BlobStorage = (*BlobStorageClient)(nil)
