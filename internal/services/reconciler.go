package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/inkwell-blog/apiserver/internal/events"
)

// Reconciler consumes integrity events and re-runs the sweeps of partial
// cascades. It narrows the window in which orphaned records survive; it
// cannot close it, since nothing serializes deletes against concurrent
// creates.
type Reconciler struct {
	cascade *Cascade
	bus     *events.Bus
}

func NewReconciler(cascade *Cascade, bus *events.Bus) *Reconciler {
	return &Reconciler{cascade: cascade, bus: bus}
}

// Run blocks consuming integrity events until ctx is done. Sweeps that
// fail again return an error to the bus, which nacks the message so the
// broker redelivers it later.
func (r *Reconciler) Run(ctx context.Context) error {
	return r.bus.Subscribe(ctx, func(ctx context.Context, ev events.Event) error {
		if ev.Kind != events.KindCascadePartial {
			return nil
		}
		if failed := r.cascade.Retry(ctx, ev); len(failed) > 0 {
			return fmt.Errorf("reconcile %s %d: %s still failing",
				ev.Entity, ev.EntityID, strings.Join(failed, ", "))
		}
		return nil
	})
}
