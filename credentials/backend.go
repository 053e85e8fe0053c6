package credentials

import "errors"

// Stable storage keys for the two credential values. The values are opaque
// tokens, so no schema versioning is needed.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// ErrNotFound is returned by a Backend when a key has never been set or has
// been deleted. It is the only Backend error the Store treats as benign.
var ErrNotFound = errors.New("credential key not found")

// Backend is one backing store for credential values. Implementations exist
// per platform capability (OS keyring, file, memory); the host application
// selects one at construction time rather than sniffing the platform here.
//
// Delete must be idempotent: deleting a key that does not exist is not an
// error.
type Backend interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
