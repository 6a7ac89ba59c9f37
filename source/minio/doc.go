// Package minio implements source.Store on MinIO and other S3-compatible
// object stores using the MinIO Go client.
//
//	store, err := minio.Dial(minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "tables",
//	})
//	tbl, err := source.LoadTable(ctx, store, "patients.csv", "")
package minio
