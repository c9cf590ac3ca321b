// Package models contains the GORM models behind the transfer tables.
//
// Domain types in internal/domain carry no ORM tags; every model here has a
// FromDomain constructor and a ToDomain method, and the repositories in the
// parent package only ever touch these models.
//
//   - base.go: shared id, timestamp, version and tenant columns
//   - transfer.go: transactions, sell and purchase lines, mapping links,
//     activity log and shipping documents
//   - ledger.go: per-location quantities and stock movements
package models
