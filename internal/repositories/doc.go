// Package repositories implements SQLite persistence for spotlist.
//
// [CollectionRepository] stores completed paginated collections as JSON arrays keyed by canonical request
// identity, so a later run can answer a fetch without touching the remote API. Rows are write-once while live and
// may carry an expiry; `spotlist cache list` and `spotlist cache clear` inspect and empty the table.
//
// The schema is created by the embedded migrations in the shared package.
package repositories
