package logic

import (
	"sync"
	"time"
)

// Reconciler owns the seat status and pending-intent flags, merges remote
// directives with local readings, and decides per tick whether to publish
// and whether to terminate.
//
// OnDirective is called from the transport's inbound goroutine while OnTick
// and Ack are called from the tick loop. A single mutex makes every call
// atomic with respect to the others.
type Reconciler struct {
	mu     sync.Mutex
	policy ReportPolicy
	status SeatStatus
	flags  Flags
	phase  Phase

	// seq counts directives that set UpdateRequested or CommandPending.
	seq uint64

	published     bool
	lastPublished bool
}

// NewReconciler creates a reconciler for the given seat. The seat starts
// unoccupied at now, with a status push owed so the first tick reports.
func NewReconciler(location string, now time.Time, policy ReportPolicy) *Reconciler {
	if policy == "" {
		policy = ReportEveryTick
	}
	return &Reconciler{
		policy: policy,
		status: SeatStatus{
			Location:   location,
			ObservedAt: now,
		},
		flags: Flags{
			UpdateRequested:  true,
			CommandPending:   true,
			OccupancyChanged: true,
		},
		phase: PhaseRunning,
	}
}

// OnDirective applies a remote directive. It never blocks on tick I/O.
func (r *Reconciler) OnDirective(d Directive) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch d {
	case DirectiveRefresh:
		r.flags.UpdateRequested = true
		r.flags.CommandPending = true
		r.seq++
	case DirectiveHalt:
		r.flags.ShutdownRequested = true
		r.flags.CommandPending = true
		r.phase = PhaseTerminating
		r.seq++
	}
}

// OnTick records a fresh reading and returns the publish decision for this tick.
func (r *Reconciler) OnTick(occupied bool, at time.Time) Decision {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status.Occupied = occupied
	r.status.ObservedAt = at

	switch r.policy {
	case ReportOnChange:
		r.flags.OccupancyChanged = !r.published || occupied != r.lastPublished
	default:
		r.flags.OccupancyChanged = true
	}

	v, next := decide(r.flags)
	r.flags = next
	if v.terminate {
		r.phase = PhaseTerminating
	}

	return Decision{
		Publish:   v.publish,
		Terminate: v.terminate,
		Status:    r.status,
		seq:       r.seq,
	}
}

// Ack confirms that the status carried by d was published successfully.
// Flags are only cleared here; a failed publish leaves them set so the
// next tick retries. A refresh that arrived after d was taken is kept.
func (r *Reconciler) Ack(d Decision) {
	if !d.Publish {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.flags.OccupancyChanged = false
	if r.seq == d.seq {
		r.flags.UpdateRequested = false
		r.flags.CommandPending = false
	}
	r.published = true
	r.lastPublished = d.Status.Occupied
}

// IsShutdown reports whether a halt has been requested. Once true it stays true.
func (r *Reconciler) IsShutdown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flags.ShutdownRequested
}

// Status returns a copy of the current seat status.
func (r *Reconciler) Status() SeatStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Flags returns a copy of the pending-intent flags.
func (r *Reconciler) Flags() Flags {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flags
}

// Phase returns the lifecycle phase. Terminating is absorbing.
func (r *Reconciler) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Policy returns the configured report policy.
func (r *Reconciler) Policy() ReportPolicy {
	return r.policy
}

type verdict struct {
	publish   bool
	terminate bool
}

// decide evaluates the flags in priority order: shutdown, then publish,
// then idle. It returns the verdict and the flags after the decision.
func decide(f Flags) (verdict, Flags) {
	switch {
	case f.ShutdownRequested:
		f.OccupancyChanged = false
		f.UpdateRequested = false
		return verdict{terminate: true}, f
	case f.OccupancyChanged || f.UpdateRequested:
		return verdict{publish: true}, f
	default:
		return verdict{}, f
	}
}
