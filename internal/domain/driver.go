package domain

// Driver links a user to the single service they operate.
type Driver struct {
	ID        string
	UserID    string
	ServiceID string
}

// DriverDetails is a driver joined with its user, service and profile.
// Profile is nil while the driver has not completed onboarding.
type DriverDetails struct {
	Driver  Driver
	User    User
	Service Service
	Profile Profile
}

// HasProfile reports whether the driver completed a profile.
func (d *DriverDetails) HasProfile() bool {
	return d.Profile != nil
}
