/*
Package compat implements the compatibility oracle of spec section 4.4: a
pure function deciding whether a provider satisfies a slot.

Grounded on the Checker interface shape of warren's pkg/health (a type that
returns a structured Result from a single synchronous call); here the probe
is a pure value comparison instead of a network round trip.
*/
package compat

import (
	"fmt"

	"github.com/hyperpolymath/reposystem/pkg/model"
)

// VersionMatcher decides whether two interface version strings are
// compatible. The default, ExactMatch, is the floor every implementation
// must preserve per spec section 9: a richer matcher (e.g. semver ranges)
// may replace it as long as it falls back to exact equality whenever either
// side omits a version.
type VersionMatcher func(slotVersion, providerVersion string) bool

// ExactMatch is the default VersionMatcher: versions match unless both sides
// declare a version and they differ by exact string equality.
func ExactMatch(slotVersion, providerVersion string) bool {
	if slotVersion == "" || providerVersion == "" {
		return true
	}
	return slotVersion == providerVersion
}

// Result is the structured verdict returned by Check.
type Result struct {
	Compatible           bool
	VersionMatch         bool
	CapabilitiesSatisfied []string
	CapabilitiesMissing   []string
	Reason                string
}

// Oracle evaluates slot/provider compatibility using a configurable
// VersionMatcher.
type Oracle struct {
	Match VersionMatcher
}

// New returns an Oracle using ExactMatch.
func New() *Oracle {
	return &Oracle{Match: ExactMatch}
}

// Check implements spec section 4.4's five ordered rules.
func (o *Oracle) Check(slot *model.Slot, provider *model.Provider) Result {
	if slot == nil {
		return Result{Reason: "slot is unknown"}
	}
	if provider == nil {
		return Result{Reason: "provider is unknown"}
	}
	if provider.SlotID != slot.ID {
		return Result{Reason: fmt.Sprintf("provider belongs to slot %s, not %s", provider.SlotID, slot.ID)}
	}

	matcher := o.Match
	if matcher == nil {
		matcher = ExactMatch
	}
	versionMatch := matcher(slot.IfaceVersion, provider.IfaceVersion)

	have := make(map[string]bool, len(provider.Capabilities))
	for _, c := range provider.Capabilities {
		have[c] = true
	}

	var satisfied, missing []string
	for _, c := range slot.RequiredCapabilities {
		if have[c] {
			satisfied = append(satisfied, c)
		} else {
			missing = append(missing, c)
		}
	}

	compatible := versionMatch && len(missing) == 0

	reason := ""
	switch {
	case !versionMatch:
		reason = fmt.Sprintf("interface version mismatch: slot requires %s, provider offers %s", slot.IfaceVersion, provider.IfaceVersion)
	case len(missing) > 0:
		reason = fmt.Sprintf("missing capabilities: %v", missing)
	}

	return Result{
		Compatible:            compatible,
		VersionMatch:          versionMatch,
		CapabilitiesSatisfied: satisfied,
		CapabilitiesMissing:   missing,
		Reason:                reason,
	}
}
