package identity

import "time"

// User links an internal wallet owner to the external identity provider's
// subject identifier. Everything balance-related keys off ID; the provider
// subject only matters during login.
type User struct {
	ID              string
	PhoneNumber     string
	ProviderSubject string
	CreatedAt       time.Time
}
