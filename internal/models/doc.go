// Package models defines the billing records handled by FDBMS.
//
// # Bills
//
// Two independent bill kinds share one lifecycle:
//   - TransportBill: carriage charges for wheat moved under a contract,
//     built from BillItem lines and the statutory DeductionSet.
//   - GrindingBill: grinding charges for a flour mill, built from
//     Commodity rows, GrindingDeductions and OtherDeductions.
//
// Both embed Lifecycle (Draft, Sent to AG, Processed) and carry
// Attachments whose DataURL payload may be stripped on save.
//
// # Reference data
//
//   - Contract: rate per kg for a contractor on a route.
//   - User: an account with a role.
//
// # Conventions
//
// JSON field names follow the historical export format so that backups
// written by earlier versions can be restored unchanged. Records are
// treated as values: calculations and lifecycle transitions return new
// copies instead of mutating their inputs.
package models
