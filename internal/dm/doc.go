// Package dm manages two-party conversations and their messages.
//
// The package is split into the components the HTTP layer composes:
//
//   - Blocks: directed block relations, enforced in both directions
//   - Conversations: one conversation per unordered pair of accounts
//   - Visibility: per-viewer hide/restore of a conversation
//   - Ledger: append-only message log with hide-for-me and tombstones
//   - Unread: per-viewer read state
//
// Creating a conversation and appending a message consult Blocks first. An
// append restores the conversation for every participant in the same store
// transaction that inserts the message, so a conversation hidden by either
// side reappears as soon as traffic flows again. Reads never restore.
//
// All state lives in the store; the types here hold no mutable state and
// are safe for concurrent use.
package dm
