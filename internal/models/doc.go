// Package models defines the core domain models of the trip ledger.
//
// # Persisted Models
//
//   - Expense: one payment event on a trip, paid by one participant
//   - ExpenseSplit: one participant's obligation against one Expense
//   - Trip: the directory view of a trip (owner, currency, optional budget)
//
// # Derived Models
//
// The following are computed on every read and never stored:
//   - Balance: a participant's position across a trip
//   - BalanceSheet: all balances for a trip plus the budget overlay
//   - Transfer: a suggested payment that moves the sheet toward zero
//
// # Money
//
// Amounts are decimal.Decimal with two decimals at rest. Currency is a label
// only; no conversion happens anywhere in the ledger.
//
// # Relationships
//
// Relationships use ID strings instead of pointers. An ExpenseSplit is owned
// exclusively by its Expense: deleting the Expense deletes every split, and
// replacing splits deletes the old set before inserting the new one.
package models
