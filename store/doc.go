// Package store defines the transactional persistence contracts for user
// credentials, refresh-token sessions and recovery escrows, plus an
// in-memory implementation used in tests and examples. A PostgreSQL
// implementation lives in store/pg.
package store
