// Package repository implements the data access layer for the Manifestor API.
//
// Every repository wraps a database.Database and speaks SurrealQL. Records
// come back as generic maps; decodeRecord normalizes record IDs and
// datetimes before decoding them into model structs.
//
// # Tables
//
//   - dream: goals with an embedded checklist, keyed by owner_id
//   - profile: one document per owner, written with merge semantics
//   - account, session: the local identity provider's records
//
// Dreams and profiles of an owner are erased together through
// ErasureRepository, which sends both deletes as a single transaction.
//
// Integration tests run against a real SurrealDB when TEST_DB_HOST is set
// (see internal/testing/testdb) and are skipped otherwise.
//
// # Example Usage
//
//	repo := NewDreamRepository(db)
//	dreams, err := repo.ListByOwner(ctx, principal.ID)
//	if err != nil {
//	    return err
//	}
package repository
