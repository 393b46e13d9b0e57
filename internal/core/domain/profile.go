package domain

// UserProfile is the public profile served by the upstream user directory.
type UserProfile struct {
	ID        int
	Email     string
	FirstName string
	LastName  string
	Avatar    string // origin URL of the avatar image
}
