package executor

import (
	"fmt"
	"time"

	"github.com/hyperpolymath/reposystem/pkg/apperr"
	"github.com/hyperpolymath/reposystem/pkg/compat"
	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/model"
	"github.com/hyperpolymath/reposystem/pkg/store"
)

// executeOp applies one Operation's per-kind semantics, per spec section 4.6.
func executeOp(st *store.Store, oracle *compat.Oracle, op model.Operation, operator string) error {
	switch op.Kind {
	case model.OpSwitchBinding:
		return execSwitchBinding(st, oracle, op, operator)
	case model.OpCreateBinding:
		return execCreateBinding(st, oracle, op, operator)
	case model.OpRemoveBinding:
		return execRemoveBinding(st, op)
	case model.OpFileChange:
		// Recorded but not executed, by design (spec sections 4.6, 9).
		return nil
	default:
		return apperr.New(apperr.OperationFailed, "unknown operation kind: "+string(op.Kind))
	}
}

func execSwitchBinding(st *store.Store, oracle *compat.Oracle, op model.Operation, operator string) error {
	removed := false
	if op.BindingID != "" {
		removed = st.Slot.RemoveBindingByID(op.BindingID)
	}
	if !removed {
		st.Slot.RemoveBindingFor(op.ConsumerID, op.SlotID)
	}

	slot, ok := st.Slot.GetSlot(op.SlotID)
	if !ok {
		return apperr.New(apperr.NotFound, "unknown slot: "+op.SlotID)
	}
	provider, ok := st.Slot.GetProvider(op.TargetProviderID)
	if !ok {
		return apperr.New(apperr.NotFound, "unknown provider: "+op.TargetProviderID)
	}

	result := oracle.Check(&slot, &provider)
	if !result.Compatible {
		return apperr.New(apperr.CompatibilityViolation, result.Reason)
	}

	binding := model.SlotBinding{
		ID:         ids.BindingID(op.ConsumerID, op.SlotID),
		ConsumerID: op.ConsumerID,
		SlotID:     op.SlotID,
		ProviderID: provider.ID,
		Mode:       model.BindingManual,
		CreatedBy:  operator,
		CreatedAt:  time.Now().UTC(),
	}
	return st.Slot.CreateBinding(binding)
}

func execCreateBinding(st *store.Store, oracle *compat.Oracle, op model.Operation, operator string) error {
	if _, exists := st.Slot.BindingFor(op.ConsumerID, op.SlotID); exists {
		return apperr.New(apperr.AlreadyExists, fmt.Sprintf("binding already exists for consumer %s slot %s", op.ConsumerID, op.SlotID))
	}

	slot, ok := st.Slot.GetSlot(op.SlotID)
	if !ok {
		return apperr.New(apperr.NotFound, "unknown slot: "+op.SlotID)
	}
	provider, ok := st.Slot.GetProvider(op.TargetProviderID)
	if !ok {
		return apperr.New(apperr.NotFound, "unknown provider: "+op.TargetProviderID)
	}

	result := oracle.Check(&slot, &provider)
	if !result.Compatible {
		return apperr.New(apperr.CompatibilityViolation, result.Reason)
	}

	binding := model.SlotBinding{
		ID:         ids.BindingID(op.ConsumerID, op.SlotID),
		ConsumerID: op.ConsumerID,
		SlotID:     op.SlotID,
		ProviderID: provider.ID,
		Mode:       model.BindingManual,
		CreatedBy:  operator,
		CreatedAt:  time.Now().UTC(),
	}
	return st.Slot.CreateBinding(binding)
}

func execRemoveBinding(st *store.Store, op model.Operation) error {
	removed := false
	if op.BindingID != "" {
		removed = st.Slot.RemoveBindingByID(op.BindingID)
	}
	if !removed {
		removed = st.Slot.RemoveBindingFor(op.ConsumerID, op.SlotID)
	}
	if !removed {
		return apperr.New(apperr.NotFound, fmt.Sprintf("no binding to remove for consumer %s slot %s", op.ConsumerID, op.SlotID))
	}
	return nil
}

// reverse computes the compensating operation for op, per spec section 4.6:
// SwitchBinding(from->to) reverses as SwitchBinding(to->from); CreateBinding
// reverses as RemoveBinding; RemoveBinding reverses as CreateBinding;
// FileChange has no reverse (returns ok=false).
func reverse(op model.Operation) (model.Operation, bool) {
	switch op.Kind {
	case model.OpSwitchBinding:
		rev := op
		rev.CurrentProviderID, rev.TargetProviderID = op.TargetProviderID, op.CurrentProviderID
		rev.BindingID = ""
		return rev, true
	case model.OpCreateBinding:
		return model.Operation{
			Kind:              model.OpRemoveBinding,
			ConsumerID:        op.ConsumerID,
			SlotID:            op.SlotID,
			CurrentProviderID: op.TargetProviderID,
		}, true
	case model.OpRemoveBinding:
		return model.Operation{
			Kind:             model.OpCreateBinding,
			ConsumerID:       op.ConsumerID,
			SlotID:           op.SlotID,
			TargetProviderID: op.CurrentProviderID,
		}, true
	default:
		return model.Operation{}, false
	}
}
