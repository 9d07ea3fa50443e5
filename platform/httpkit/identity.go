package httpkit

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity describes the authenticated caller of a request.
type Identity interface {
	UserID() uuid.UUID
	UserName() string
	TenantID() uuid.UUID
	Roles() []string
	HasRole(role string) bool
	IsAuthenticated() bool
}

type identity struct {
	userID   uuid.UUID
	userName string
	tenantID uuid.UUID
	roles    []string
}

func (i identity) UserID() uuid.UUID { return i.userID }

func (i identity) UserName() string { return i.userName }

func (i identity) TenantID() uuid.UUID { return i.tenantID }

func (i identity) Roles() []string { return i.roles }

func (i identity) HasRole(role string) bool {
	for _, r := range i.roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i identity) IsAuthenticated() bool { return i.userID != uuid.Nil }

// GetIdentity extracts the caller identity from the gin context. It returns
// a zero identity when the request was not authenticated.
func GetIdentity(c *gin.Context) Identity {
	id := identity{}

	if raw, ok := c.Get(ContextUserIDKey); ok {
		if userID, ok := raw.(uuid.UUID); ok {
			id.userID = userID
		}
	}
	if raw, ok := c.Get(ContextUserNameKey); ok {
		if name, ok := raw.(string); ok {
			id.userName = name
		}
	}
	if raw, ok := c.Get(ContextTenantIDKey); ok {
		if tenantID, ok := raw.(uuid.UUID); ok {
			id.tenantID = tenantID
		}
	}
	if raw, ok := c.Get(ContextRolesKey); ok {
		if roles, ok := raw.([]string); ok {
			id.roles = roles
		}
	}

	return id
}
