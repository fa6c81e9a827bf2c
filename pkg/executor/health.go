package executor

import (
	"fmt"

	"github.com/hyperpolymath/reposystem/pkg/compat"
	"github.com/hyperpolymath/reposystem/pkg/store"
)

// runHealthCheck verifies the post-apply invariants of spec section 4.6:
// every binding's slot and provider exist, every binding passes the
// compatibility oracle, and no binding is orphaned (its consumer repo no
// longer exists). It never rolls anything back; callers downgrade the
// audit entry's HealthCheckPassed and append the returned notes.
func runHealthCheck(st *store.Store, oracle *compat.Oracle) []string {
	var notes []string

	for _, b := range st.Slot.ListBindings() {
		slot, ok := st.Slot.GetSlot(b.SlotID)
		if !ok {
			notes = append(notes, fmt.Sprintf("binding %s references unknown slot %s", b.ID, b.SlotID))
			continue
		}
		provider, ok := st.Slot.GetProvider(b.ProviderID)
		if !ok {
			notes = append(notes, fmt.Sprintf("binding %s references unknown provider %s", b.ID, b.ProviderID))
			continue
		}
		if _, ok := st.Graph.GetRepo(b.ConsumerID); !ok {
			notes = append(notes, fmt.Sprintf("binding %s is orphaned: consumer repo %s no longer exists", b.ID, b.ConsumerID))
			continue
		}
		result := oracle.Check(&slot, &provider)
		if !result.Compatible {
			notes = append(notes, fmt.Sprintf("binding %s is no longer compatible: %s", b.ID, result.Reason))
		}
	}

	return notes
}
