// Package s3 implements source.Store on Amazon S3.
//
// Objects are read with GetObject and written through the SDK's upload
// manager, which switches to multipart uploads for large payloads.
//
//	store, err := s3.NewFromConfig(ctx, "my-bucket", s3.WithPrefix("tables/"))
//	tbl, err := source.LoadTable(ctx, store, "patients.csv", "")
package s3
