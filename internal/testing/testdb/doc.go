// Package testdb provides isolated SurrealDB namespaces for repository
// integration tests.
//
// Tests run only when TEST_DB_HOST is set; otherwise New skips the test, so
// `go test ./...` stays green without a database:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    repo := repository.NewDreamRepository(tdb.DB)
//	    ...
//	}
//
// Each call gets its own namespace with the embedded schema applied. The
// namespace is removed in t.Cleanup.
package testdb
