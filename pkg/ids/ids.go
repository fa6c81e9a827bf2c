// Package ids constructs the stable string identifiers described in
// spec section 3. Every function is pure: equal inputs always produce
// equal outputs (P1), and ids are the only cross-entity references that
// survive persistence.
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s, replaces runs of non-alphanumeric characters with a
// single "-", and trims leading/trailing "-".
func Slugify(s string) string {
	lower := strings.ToLower(s)
	slug := nonAlnum.ReplaceAllString(lower, "-")
	return strings.Trim(slug, "-")
}

// hashHex returns the first n hex characters of SHA-256 over parts,
// concatenated as UTF-8 with no separator, in the order given.
func hashHex(n int, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)[:n]
}

// RepoID builds a repo id for a known forge.
func RepoID(forge, owner, name string) string {
	return fmt.Sprintf("repo:%s:%s/%s", forge, owner, name)
}

// LocalRepoID builds a repo id for a forge-less local repository from its
// canonical filesystem path.
func LocalRepoID(canonicalPath string) string {
	return fmt.Sprintf("repo:local:%s", hashHex(12, canonicalPath))
}

// EdgeID derives an edge id from its semantic key. Order is fixed: from, to,
// rel, channel, label.
func EdgeID(from, to, rel, channel, label string) string {
	return fmt.Sprintf("edge:%s", hashHex(8, from, to, rel, channel, label))
}

// GroupID builds a group id from its name.
func GroupID(name string) string {
	return fmt.Sprintf("group:%s", Slugify(name))
}

// AspectID builds an aspect id from its (case-insensitive) name.
func AspectID(name string) string {
	return fmt.Sprintf("aspect:%s", strings.ToLower(name))
}

// AnnotationID derives an annotation id from (target, aspect_id), making
// that pair unique per I3.
func AnnotationID(target, aspectID string) string {
	return fmt.Sprintf("aa:%s", hashHex(8, target, aspectID))
}

// SlotID builds a slot id from its category and name.
func SlotID(category, name string) string {
	return fmt.Sprintf("slot:%s.%s", strings.ToLower(category), strings.ToLower(name))
}

// ShortSlot returns the "<category>.<name>" short form of a slot id, used
// when composing provider and binding ids.
func ShortSlot(slotID string) string {
	return strings.TrimPrefix(slotID, "slot:")
}

// ProviderID builds a provider id from its owning slot and name.
func ProviderID(slotID, name string) string {
	return fmt.Sprintf("provider:%s:%s", ShortSlot(slotID), strings.ToLower(name))
}

// ShortProvider returns the "<slot-short>:<name>" short form of a provider
// id, used when composing binding ids is not applicable (bindings key on
// consumer+slot, not provider); retained for display purposes.
func ShortProvider(providerID string) string {
	return strings.TrimPrefix(providerID, "provider:")
}

// ShortRepo returns a short display form of a repo id (after the "repo:"
// prefix), used when composing binding ids.
func ShortRepo(repoID string) string {
	return strings.TrimPrefix(repoID, "repo:")
}

// BindingID builds a binding id from the consumer repo id and slot id,
// making (consumer, slot) unique.
func BindingID(consumerID, slotID string) string {
	return fmt.Sprintf("binding:%s:%s", ShortRepo(consumerID), ShortSlot(slotID))
}

// ScenarioID builds a scenario id from its name.
func ScenarioID(name string) string {
	return fmt.Sprintf("scenario:%s", Slugify(name))
}

// TimestampLayout is the compact layout used inside plan ids.
const TimestampLayout = "20060102150405"

// PlanID builds a plan id from the scenario it was derived from and a
// formatted timestamp (caller formats with TimestampLayout in UTC).
func PlanID(scenarioID, formattedTimestamp string) string {
	return fmt.Sprintf("plan:%s:%s", ShortScenario(scenarioID), formattedTimestamp)
}

// ShortScenario returns the short form of a scenario id.
func ShortScenario(scenarioID string) string {
	return strings.TrimPrefix(scenarioID, "scenario:")
}

// AuditID builds an audit entry id from a plan id and a unix timestamp.
func AuditID(planID string, unixTimestamp int64) string {
	return fmt.Sprintf("audit:%s:%d", planID, unixTimestamp)
}

// UndoAuditID builds the id for a manual-undo audit entry.
func UndoAuditID(planID string, unixTimestamp int64) string {
	return fmt.Sprintf("audit:undo:%s:%d", planID, unixTimestamp)
}
