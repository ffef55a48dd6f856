package models

import "time"

// ProfileRole represents the tier of an affiliate in the sales network
type ProfileRole string

const (
	RoleManager ProfileRole = "MANAGER"
	RoleAgent   ProfileRole = "AGENT"
)

// ProfileStatus represents the lifecycle status of an affiliate profile
type ProfileStatus string

const (
	ProfileActive     ProfileStatus = "ACTIVE"
	ProfileSuspended  ProfileStatus = "SUSPENDED"
	ProfileTerminated ProfileStatus = "TERMINATED"
)

// AffiliateProfile is an affiliate (branch manager or sales agent).
// Profiles are owned by the onboarding subsystem; this service only reads them.
type AffiliateProfile struct {
	ID        string
	Name      string
	Role      ProfileRole
	Status    ProfileStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the profile can currently earn commission
func (p *AffiliateProfile) IsActive() bool {
	return p.Status == ProfileActive
}
