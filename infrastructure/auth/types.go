package auth

// Token roles. Admins manage identities, config and the audit log; devices
// may only submit verification frames.
const (
	RoleAdmin  = "admin"
	RoleDevice = "device"
)

// ClaimsData is the payload signed into a device-issued token.
type ClaimsData struct {
	Role      string
	DeviceID  string
	IssuedAt  int64
	ExpiresAt int64
}
