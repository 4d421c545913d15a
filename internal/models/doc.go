// Package models defines the core domain models for the shared ledger.
//
// A Group owns Participants, Expenses and Payments. Participants are unique
// by name within their group; expenses and payments reference participants
// by ID so renaming a participant never rewrites expense rows.
//
// Models carry no serialization tags. The HTTP layer maps them to its own
// response types.
package models
