package security

import (
	"context"
	"testing"

	"coach-portal/internal/auth/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	coach   = model.Principal{UserID: "s1", Role: "coach"}
	athlete = model.Principal{UserID: "ath-user-a1", Role: "athlete", AthleteID: "a1"}
)

func newDefaultPolicy(t *testing.T) *AccessPolicy {
	t.Helper()
	p, err := NewAccessPolicy(DefaultRules(), nil)
	require.NoError(t, err)
	return p
}

func TestAccessPolicy_StaffMayDoAnything(t *testing.T) {
	p := newDefaultPolicy(t)
	for _, op := range []string{OpRead, OpCreate, OpUpdate, OpDelete} {
		d := p.Evaluate(context.Background(), coach, AccessRequest{Operation: op, Collection: "athleteNotes"})
		assert.True(t, d.Allowed, op)
		assert.Equal(t, "staff-full-access", d.Rule)
	}
}

func TestAccessPolicy_AthleteRules(t *testing.T) {
	p := newDefaultPolicy(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		req     AccessRequest
		allowed bool
	}{
		{"read plans", AccessRequest{Operation: OpRead, Collection: "plans"}, true},
		{"read coach notes", AccessRequest{Operation: OpRead, Collection: "athleteNotes"}, false},
		{"create own checkin", AccessRequest{Operation: OpCreate, Collection: "weeklyCheckIns",
			Data: map[string]interface{}{"athleteId": "a1", "energy": 4}}, true},
		{"create checkin for someone else", AccessRequest{Operation: OpCreate, Collection: "weeklyCheckIns",
			Data: map[string]interface{}{"athleteId": "a2"}}, false},
		{"create checkin without athlete", AccessRequest{Operation: OpCreate, Collection: "weeklyCheckIns",
			Data: map[string]interface{}{"energy": 4}}, false},
		{"create goal", AccessRequest{Operation: OpCreate, Collection: "goals",
			Data: map[string]interface{}{"athleteId": "a1"}}, false},
		{"edit own checkin", AccessRequest{Operation: OpUpdate, Collection: "weeklyCheckIns",
			Data:     map[string]interface{}{"id": "c1", "comments": "ok"},
			Resource: map[string]interface{}{"id": "c1", "athleteId": "a1"}}, true},
		{"move checkin to another athlete", AccessRequest{Operation: OpUpdate, Collection: "weeklyCheckIns",
			Data:     map[string]interface{}{"id": "c1", "athleteId": "a2"},
			Resource: map[string]interface{}{"id": "c1", "athleteId": "a1"}}, false},
		{"edit missing checkin", AccessRequest{Operation: OpUpdate, Collection: "weeklyCheckIns",
			Data: map[string]interface{}{"id": "c9"}}, false},
		{"mark own notification read", AccessRequest{Operation: OpUpdate, Collection: "notifications",
			Data:     map[string]interface{}{"id": "n1", "read": true},
			Resource: map[string]interface{}{"id": "n1", "userId": "ath-user-a1"}}, true},
		{"rewrite own notification owner", AccessRequest{Operation: OpUpdate, Collection: "notifications",
			Data:     map[string]interface{}{"id": "n1", "read": true, "userId": "ath-user-a2"},
			Resource: map[string]interface{}{"id": "n1", "userId": "ath-user-a1"}}, false},
		{"rewrite own notification text", AccessRequest{Operation: OpUpdate, Collection: "notifications",
			Data:     map[string]interface{}{"id": "n1", "title": "x", "message": "y"},
			Resource: map[string]interface{}{"id": "n1", "userId": "ath-user-a1"}}, false},
		{"mark foreign notification", AccessRequest{Operation: OpUpdate, Collection: "notifications",
			Data:     map[string]interface{}{"id": "n2", "read": true},
			Resource: map[string]interface{}{"id": "n2", "userId": "ath-user-a2"}}, false},
		{"delete anything", AccessRequest{Operation: OpDelete, Collection: "weeklyCheckIns",
			Resource: map[string]interface{}{"id": "c1", "athleteId": "a1"}}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, p.Evaluate(ctx, athlete, tc.req).Allowed)
		})
	}
}

func TestAccessPolicy_UnknownRoleDenied(t *testing.T) {
	p := newDefaultPolicy(t)
	d := p.Evaluate(context.Background(), model.Principal{UserID: "x"}, AccessRequest{Operation: OpRead, Collection: "plans"})
	assert.False(t, d.Allowed)
}

func TestNewAccessPolicy_RejectsBadExpression(t *testing.T) {
	_, err := NewAccessPolicy([]Rule{{Name: "broken", Expression: "auth.role =="}}, nil)
	assert.Error(t, err)
}

func TestReadScope(t *testing.T) {
	_, _, ok := ReadScope(coach, "plans")
	assert.False(t, ok)

	field, value, ok := ReadScope(athlete, "plans")
	assert.True(t, ok)
	assert.Equal(t, "athleteId", field)
	assert.Equal(t, "a1", value)

	field, value, _ = ReadScope(athlete, "athletes")
	assert.Equal(t, "id", field)
	assert.Equal(t, "a1", value)

	field, value, _ = ReadScope(athlete, "notifications")
	assert.Equal(t, "userId", field)
	assert.Equal(t, "ath-user-a1", value)
}
