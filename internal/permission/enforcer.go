// Package permission holds the role × action capability table.
package permission

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/yukikurage/site-services-api/internal/models"
)

// Actions checked by RequirePermission.
const (
	ActionTicketRead         = "ticket:read"
	ActionTicketCreate       = "ticket:create"
	ActionTicketUpdate       = "ticket:update"
	ActionTicketDelete       = "ticket:delete"
	ActionTicketAttach       = "ticket:attach"
	ActionUserManage         = "user:manage"
	ActionReportRead         = "report:read"
	ActionAuditRead          = "audit:read"
	ActionAnnouncementRead   = "announcement:read"
	ActionAnnouncementManage = "announcement:manage"
	ActionRatingRead         = "rating:read"
	ActionRatingWrite        = "rating:write"
	ActionStreamListen       = "stream:listen"
)

const rbacModel = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.act == p.act
`

var everyone = []models.Role{models.RoleResident, models.RoleStaff, models.RoleAdmin}

// DefaultPolicies is the built-in capability table.
func DefaultPolicies() map[string][]models.Role {
	return map[string][]models.Role{
		ActionTicketRead:         everyone,
		ActionTicketCreate:       {models.RoleResident},
		ActionTicketUpdate:       {models.RoleAdmin, models.RoleStaff},
		ActionTicketDelete:       {models.RoleResident},
		ActionTicketAttach:       everyone,
		ActionUserManage:         {models.RoleAdmin},
		ActionReportRead:         {models.RoleAdmin},
		ActionAuditRead:          {models.RoleAdmin},
		ActionAnnouncementRead:   everyone,
		ActionAnnouncementManage: {models.RoleAdmin},
		ActionRatingRead:         everyone,
		ActionRatingWrite:        {models.RoleResident},
		ActionStreamListen:       everyone,
	}
}

// Enforcer answers whether a role may perform an action.
type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
}

// NewEnforcer builds an in-memory enforcer loaded with policies.
func NewEnforcer(policies map[string][]models.Role) (*Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	rules := make([][]string, 0, len(policies)*len(everyone))
	for action, roles := range policies {
		for _, role := range roles {
			rules = append(rules, []string{string(role), action})
		}
	}
	if len(rules) > 0 {
		if _, err := enforcer.AddPolicies(rules); err != nil {
			return nil, fmt.Errorf("failed to load policy: %w", err)
		}
	}

	return &Enforcer{enforcer: enforcer}, nil
}

// Allowed reports whether role may perform action.
func (e *Enforcer) Allowed(role models.Role, action string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(string(role), action)
	if err != nil {
		return false, fmt.Errorf("permission check failed: %w", err)
	}
	return allowed, nil
}
