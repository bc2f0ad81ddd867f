// Package all wires all built-in storage backends into the storage factory.
//
// Importing it for side effects makes the "csv", "sqlite" and "postgres"
// kinds available to storage.New and storage.EnsureTable:
//
//	import _ "csvclean/internal/storage/all"
//
// A binary that needs only a subset of backends can import the concrete
// packages directly instead.
package all

import (
	_ "csvclean/internal/storage/csvfile"
	_ "csvclean/internal/storage/postgres"
	_ "csvclean/internal/storage/sqlite"
)
