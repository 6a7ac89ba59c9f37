// Package source loads tables from local files, memory, S3 or MinIO.
//
// A Store hands out readers for named objects. LoadTable reads one CSV
// object into a table.Table, transparently decompressing ".zst" and ".lz4"
// objects; LoadTables loads several in parallel. ParseURI splits the
// locations accepted by the shell's LOAD command:
//
//	data/patients.csv
//	file:///srv/data/patients.csv.zst
//	s3://bucket/prefix/patients.csv
//	minio://bucket/patients.csv.lz4
//
// The S3 and MinIO stores live in the s3 and minio subpackages.
package source
