// Package table holds the tabular inputs qsql filters: column schemas,
// in-memory tables, a catalog of databases, and CSV loading.
//
// Rows are raw field values positionally aligned to a Schema. Nothing in
// qsql mutates a Row once it has been inserted.
package table
