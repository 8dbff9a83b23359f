package model

import (
	"sort"
	"strings"
)

// Record is one JSON document stored under a collection and id.
type Record map[string]interface{}

// ID returns the record's embedded id, or "" when absent or not a string.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Clone copies the top level of the record. Nested values are shared.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge returns {...r, ...partial}. Top-level keys in partial fully replace the
// same key in r; nested objects and arrays are not merged.
func (r Record) Merge(partial Record) Record {
	out := r.Clone()
	for k, v := range partial {
		out[k] = v
	}
	return out
}

// Matches reports whether the record's field equals value. Non-string fields are
// compared through their JSON-ish string form, so ?paid=true matches a bool.
func (r Record) Matches(field, value string) bool {
	v, ok := r[field]
	if !ok || v == nil {
		return false
	}
	return stringify(v) == value
}

// Collection names exposed over /data
const (
	CollectionAthletes         = "athletes"
	CollectionPlans            = "plans"
	CollectionAppointments     = "appointments"
	CollectionGoals            = "goals"
	CollectionSmartGoals       = "smartGoals"
	CollectionWeeklyCheckIns   = "weeklyCheckIns"
	CollectionAchievements     = "achievements"
	CollectionPayments         = "payments"
	CollectionSubscriptions    = "subscriptions"
	CollectionAthleteNotes     = "athleteNotes"
	CollectionAthleteDocuments = "athleteDocuments"
	CollectionNotifications    = "notifications"
)

// Internal collections share the table but are never reachable over /data.
const (
	CollectionStaffUsers   = "staffUsers"
	CollectionAthleteUsers = "athleteUsers"
)

var allowedCollections = map[string]struct{}{
	CollectionAthletes:         {},
	CollectionPlans:            {},
	CollectionAppointments:     {},
	CollectionGoals:            {},
	CollectionSmartGoals:       {},
	CollectionWeeklyCheckIns:   {},
	CollectionAchievements:     {},
	CollectionPayments:         {},
	CollectionSubscriptions:    {},
	CollectionAthleteNotes:     {},
	CollectionAthleteDocuments: {},
	CollectionNotifications:    {},
}

// IsAllowedCollection reports whether name is on the /data allow-list.
func IsAllowedCollection(name string) bool {
	_, ok := allowedCollections[name]
	return ok
}

// AllowedCollections returns the allow-list in sorted order.
func AllowedCollections() []string {
	names := make([]string, 0, len(allowedCollections))
	for name := range allowedCollections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseCollections splits a comma separated list and keeps allow-listed names.
func ParseCollections(csv string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(csv, ",") {
		name := strings.TrimSpace(part)
		if IsAllowedCollection(name) && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
