package domain

import "time"

// Claims is the verified content of an access token. Role is the role the
// subject held when the token was issued; Version is the account's token
// version at that moment.
type Claims struct {
	TokenID   string
	Subject   string
	UserID    string
	Role      Role
	Version   int
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal is the identity snapshot attached to a single request once its
// token has been verified.
type Principal struct {
	UserID    string
	Username  string
	Role      Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// PrincipalFromClaims builds the request identity carried by a decoded token.
func PrincipalFromClaims(c Claims) Principal {
	return Principal{
		UserID:    c.UserID,
		Username:  c.Subject,
		Role:      c.Role,
		TokenID:   c.TokenID,
		IssuedAt:  c.IssuedAt,
		ExpiresAt: c.ExpiresAt,
	}
}

// IsAdmin reports whether the principal holds the ADMIN role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
