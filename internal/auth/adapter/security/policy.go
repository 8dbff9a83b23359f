package security

import (
	"context"
	"fmt"

	"coach-portal/internal/auth/domain/model"
	coachmodel "coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/shared/logger"

	"github.com/google/cel-go/cel"
)

// Operations checked by the access policy
const (
	OpRead   = "read"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Rule is a named CEL expression over auth, request and resource. A request is
// allowed when any rule evaluates to true.
type Rule struct {
	Name       string
	Expression string
}

// AccessRequest describes one call to the collection resource.
type AccessRequest struct {
	Operation  string
	Collection string
	// Data is the request body for create and update.
	Data map[string]interface{}
	// Resource is the stored record targeted by update or delete, nil otherwise.
	Resource map[string]interface{}
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Rule    string
}

// DefaultRules lets staff do anything. Athletes may read their own scoped
// collections, file weekly check-ins for themselves and mark their own
// notifications read.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "staff-full-access",
			Expression: `auth.role in ["admin", "coach"]`,
		},
		{
			Name: "athlete-read-own",
			Expression: `auth.role == "athlete" && request.op == "read" &&
				request.collection in ["athletes", "plans", "appointments", "goals", "smartGoals",
					"weeklyCheckIns", "achievements", "payments", "subscriptions",
					"athleteDocuments", "notifications"]`,
		},
		{
			Name: "athlete-create-checkin",
			Expression: `auth.role == "athlete" && request.op == "create" &&
				request.collection == "weeklyCheckIns" && request.data.athleteId == auth.athleteId`,
		},
		{
			Name: "athlete-edit-own-checkin",
			Expression: `auth.role == "athlete" && request.op == "update" &&
				request.collection == "weeklyCheckIns" && resource != null &&
				resource.athleteId == auth.athleteId &&
				(!has(request.data.athleteId) || request.data.athleteId == auth.athleteId)`,
		},
		{
			Name: "athlete-mark-notification",
			Expression: `auth.role == "athlete" && request.op == "update" &&
				request.collection == "notifications" && resource != null &&
				resource.userId == "ath-user-" + auth.athleteId &&
				request.data.all(k, k in ["id", "read"])`,
		},
	}
}

type compiledRule struct {
	name    string
	program cel.Program
}

// AccessPolicy evaluates compiled CEL rules.
type AccessPolicy struct {
	rules  []compiledRule
	logger logger.Logger
}

func newPolicyEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("auth", cel.DynType),
		cel.Variable("request", cel.DynType),
		cel.Variable("resource", cel.DynType),
	)
}

// NewAccessPolicy compiles rules once. A rule that does not compile fails construction.
func NewAccessPolicy(rules []Rule, log logger.Logger) (*AccessPolicy, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	env, err := newPolicyEnv()
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		ast, issues := env.Compile(r.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compile rule %s: %w", r.Name, issues.Err())
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program for rule %s: %w", r.Name, err)
		}
		compiled = append(compiled, compiledRule{name: r.Name, program: program})
	}
	return &AccessPolicy{rules: compiled, logger: log.WithComponent("access-policy")}, nil
}

// Evaluate returns the first rule that allows the request. Rules that fail to
// evaluate (a missing field, a wrong type) count as not matching.
func (p *AccessPolicy) Evaluate(ctx context.Context, principal model.Principal, req AccessRequest) Decision {
	data := req.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	var resource interface{}
	if req.Resource != nil {
		resource = req.Resource
	}

	vars := map[string]interface{}{
		"auth": map[string]interface{}{
			"uid":       principal.UserID,
			"email":     principal.Email,
			"role":      principal.Role,
			"athleteId": principal.AthleteID,
		},
		"request": map[string]interface{}{
			"op":         req.Operation,
			"collection": req.Collection,
			"data":       data,
		},
		"resource": resource,
	}

	for _, rule := range p.rules {
		out, _, err := rule.program.Eval(vars)
		if err != nil {
			p.logger.Debugf("rule %s: %v", rule.name, err)
			continue
		}
		if allowed, ok := out.Value().(bool); ok && allowed {
			return Decision{Allowed: true, Rule: rule.name}
		}
	}
	return Decision{Allowed: false}
}

// ReadScope is the filter an athlete's reads of a collection are pinned to.
// ok is false for staff, who read unfiltered.
func ReadScope(principal model.Principal, collection string) (field, value string, ok bool) {
	if principal.Role != coachmodel.RoleAthlete {
		return "", "", false
	}
	switch collection {
	case coachmodel.CollectionAthletes:
		return "id", principal.AthleteID, true
	case coachmodel.CollectionNotifications:
		return "userId", coachmodel.AthleteUserID(principal.AthleteID), true
	default:
		return "athleteId", principal.AthleteID, true
	}
}
