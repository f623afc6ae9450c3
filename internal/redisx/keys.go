package redisx

import "time"

const (
	// Dedup gateway callback: dedup:callback:{gateway}:{tx_code}. Fast path
	// saja; gerbang PENDING di baris payment tetap jadi kebenaran.
	KeyDedupCallback = "dedup:callback:%s:%s"

	// Cache status order: order_status:{order_id} -> {"status": "...", "payment_status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLDedupCallback = 48 * time.Hour
	TTLStatusCache   = 5 * time.Minute
	TTLDedup         = 48 * time.Hour
)
