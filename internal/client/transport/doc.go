// Package transport moves the bytes of one file to Vimesta storage.
//
// A Transport receives a single file and its target folder, reports
// progress as a non-decreasing percentage and returns the upload result or
// an error. Cancellation is context cancellation: the upload manager
// cancels with ErrCancelled or ErrTimeout as the cause and transports
// report those sentinels back.
//
// Implementations:
//
//   - Multipart: one streaming multipart/form-data POST to /files/upload.
//   - Chunked: sequential fixed-size chunks POSTed to /files/upload-chunk.
//   - Presigned: a presigned PUT URL from the backend, then confirmation.
//   - S3: PutObject into an S3-compatible bucket (aws-sdk-go-v2).
//   - Minio: PutObject through the MinIO client.
//
// Message turns any error returned here into the text shown to users.
package transport
