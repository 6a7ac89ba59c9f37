// Package accel detects the vector width the host can use.
//
// Detection runs once at init. The result selects qsql's accelerated
// statevector mode; set QSQL_ACCEL=off to force the scalar path.
package accel
