package shtp

import (
	"sync"

	"github.com/shtp-go/shtp/hal"
)

// Pool bounds the number of simultaneously open Endpoints, mirroring the
// reference's fixed `instances[SHTP_INSTANCES]` table and its
// `getInstance`/release pair. Grounded on the teacher's
// pkg/dnp3/manager.go Manager, adapted from a named-channel registry to
// a capacity counter since SHTP slots are anonymous and released purely
// by Close, not by an id.
type Pool struct {
	mu       sync.Mutex
	capacity int
	open     int
}

// NewPool returns a Pool that permits at most capacity concurrently open
// Endpoints. A capacity <= 0 is treated as 1, matching the reference's
// SHTP_INSTANCES=1 default for static-memory targets.
func NewPool(capacity int) *Pool {
	if capacity <= 0 {
		capacity = 1
	}
	return &Pool{capacity: capacity}
}

// Open acquires a slot and opens an Endpoint over h, as Open does.
// Fails with StatusNoInstance if the pool is already at capacity.
func (p *Pool) Open(h hal.HAL, opts ...EndpointOption) (*Endpoint, error) {
	p.mu.Lock()
	if p.open >= p.capacity {
		p.mu.Unlock()
		return nil, newStatusError(StatusNoInstance, ErrNoInstance)
	}
	p.open++
	p.mu.Unlock()

	ep, err := Open(h, opts...)
	if err != nil {
		p.mu.Lock()
		p.open--
		p.mu.Unlock()
		return nil, err
	}

	ep.pool = p
	return ep, nil
}

// release returns ep's slot to the pool. Called from Endpoint.Close for
// endpoints acquired via Pool.Open; a no-op for endpoints from the
// package-level Open.
func (p *Pool) release() {
	p.mu.Lock()
	p.open--
	p.mu.Unlock()
}

// InUse reports the number of currently open Endpoints acquired from
// this pool.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}
