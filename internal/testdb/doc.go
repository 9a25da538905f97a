// Package testdb provides helpers for PostgreSQL integration tests.
//
// Tests obtain a migrated connection with GetTestDBWithT, which skips the test
// when COURSEGEN_TEST_DATABASE_URL is unset, and isolate their writes with
// WithTx, which rolls the transaction back when the test function returns:
//
//	db := testdb.GetTestDBWithT(t)
//	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	    courses := postgres.NewPostgresCourseStore(tx, nil)
//	    ...
//	})
package testdb
