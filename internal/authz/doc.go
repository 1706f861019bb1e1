// Package authz implements the group-scoped authorization engine: membership
// resolution with per-request caching, permission-level evaluation, and the
// generic resource-ownership checker that folds authorization into the
// mutating SQL statement itself.
package authz
