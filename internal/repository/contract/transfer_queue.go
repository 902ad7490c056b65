package contract

import "sheetroom-be/internal/entity"

// TransferQueue is the per-room mailbox for cross-room cell transfers.
//
// Enqueue is non-blocking and always succeeds; there is no deduplication and
// no size bound. Drain is destructive: the returned payloads are removed
// atomically and are gone even if the caller crashes before applying them,
// so delivery is at-most-once. The default implementation lives in
// process memory, so a restart loses everything pending; the interface exists
// so a durable queue can be swapped in without touching callers.
type TransferQueue interface {
	Enqueue(targetRoom string, payload *entity.TransferPayload)
	Drain(room string) []*entity.TransferPayload
	Depth(room string) int
}
