package domain

import "time"

// Well-known role tags. Roles are an open set; these are the ones the routing
// layer refers to.
const (
	RoleAdmin = "admin"
	RoleSales = "sales"
)

// Session is the authenticated principal attached to a client.
type Session struct {
	PrincipalID string `json:"principal_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`

	// TokenID and ExpiresAt identify the signed token the session came from.
	// Both are empty for sessions that were never issued as a token.
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// Active reports whether the session carries a principal.
func (s *Session) Active() bool {
	return s != nil && s.PrincipalID != ""
}

// Direction of a logged message relative to this service.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionInbound || d == DirectionOutbound
}
