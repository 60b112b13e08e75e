package shtp

import "sync/atomic"

// Statistics tracks diagnostic counters for an Endpoint. These are not
// part of the wire protocol; they exist purely for observability, read
// via a debug accessor (Endpoint.Statistics). Grounded on
// pkg/transport/statistics.go's atomic-counter pattern in the teacher,
// renamed to SHTP's counter set from spec.md §7.
type Statistics struct {
	RxBadChan            uint64
	RxShortFragments     uint64
	RxTooLargePayloads   uint64
	RxInterruptedPayloads uint64

	TxBadChan          uint64
	TxDiscards         uint64
	TxTooLargePayloads uint64
}

// statsCounters holds the same counters as atomically-addressed fields,
// owned internally by the Endpoint. Statistics (the exported snapshot
// type above) is produced from these on demand.
type statsCounters struct {
	rxBadChan            uint64
	rxShortFragments     uint64
	rxTooLargePayloads   uint64
	rxInterruptedPayloads uint64

	txBadChan          uint64
	txDiscards         uint64
	txTooLargePayloads uint64
}

func (s *statsCounters) snapshot() Statistics {
	return Statistics{
		RxBadChan:             atomic.LoadUint64(&s.rxBadChan),
		RxShortFragments:      atomic.LoadUint64(&s.rxShortFragments),
		RxTooLargePayloads:    atomic.LoadUint64(&s.rxTooLargePayloads),
		RxInterruptedPayloads: atomic.LoadUint64(&s.rxInterruptedPayloads),
		TxBadChan:             atomic.LoadUint64(&s.txBadChan),
		TxDiscards:            atomic.LoadUint64(&s.txDiscards),
		TxTooLargePayloads:    atomic.LoadUint64(&s.txTooLargePayloads),
	}
}

func (s *statsCounters) reset() {
	atomic.StoreUint64(&s.rxBadChan, 0)
	atomic.StoreUint64(&s.rxShortFragments, 0)
	atomic.StoreUint64(&s.rxTooLargePayloads, 0)
	atomic.StoreUint64(&s.rxInterruptedPayloads, 0)
	atomic.StoreUint64(&s.txBadChan, 0)
	atomic.StoreUint64(&s.txDiscards, 0)
	atomic.StoreUint64(&s.txTooLargePayloads, 0)
}
