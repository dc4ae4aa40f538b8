// Package provider brokers signing requests between an application and a
// remote key-holding agent over an asynchronous channel.
//
// Responsibilities:
// - Reconcile session chain/account state against asynchronously arriving
//   session and notification payloads, suppressing redundant change events.
// - Dispatch typed signing requests to the channel, scoped to the resolved
//   account's chain and group.
// - Fan application-visible events (accountsChanged, chainChanged,
//   disconnect, notification pass-throughs) out to subscribers.
//
// Non-responsibilities:
// - Session establishment, pairing and encryption (the channel's concern).
// - Transaction construction and validation against a chain node.
package provider
