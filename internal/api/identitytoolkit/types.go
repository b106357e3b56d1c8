package identitytoolkit

// LookupRequest asks the Identity Toolkit API to resolve an ID token.
type LookupRequest struct {
	IDToken string `json:"idToken"`
}

// LookupResponse is the account lookup envelope.
type LookupResponse struct {
	Kind  string `json:"kind,omitempty"`
	Users []User `json:"users"`
}

// User is one account record as returned by accounts:lookup.
type User struct {
	LocalID       string `json:"localId"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"emailVerified,omitempty"`
	DisplayName   string `json:"displayName,omitempty"`
	Disabled      bool   `json:"disabled,omitempty"`
	LastLoginAt   string `json:"lastLoginAt,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}
