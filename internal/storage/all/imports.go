// Package all wires the built-in storage backends into the storage factory.
//
// It exists purely for side effects: importing it (typically as a blank
// import from the wiring layer) runs each backend's init function, which
// registers its factory with the storage package. Kinds made available:
//
//   - "sqlite"   (txnetl/internal/storage/sqlite)
//   - "postgres" (txnetl/internal/storage/postgres)
package all

import (
	_ "txnetl/internal/storage/postgres"
	_ "txnetl/internal/storage/sqlite"
)
