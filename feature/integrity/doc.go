// Package integrity checks the stores the sync writes to outside the workspace
// API itself.
//
// # Checks Provided
//
//   - Covers: Compares the mirrored cover objects in the bucket with the cover
//     links of the book records. Objects no record links to are orphans;
//     linked objects absent from the bucket are missing.
//   - Store: Validates that the local mirror database has every table and
//     column of the workspace models.
//
// A check whose store is not configured reports status "disabled".
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/covers : Runs the cover check (supports ?fix=true, which removes orphans).
//   - GET /integrity/store : Runs the store schema check (supports ?fix=true, which migrates).
package integrity
