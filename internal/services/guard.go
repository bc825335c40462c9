package services

import "github.com/sbilibin2017/gw-blog/internal/models"

// Owned is a resource that belongs to exactly one user.
type Owned interface {
	OwnerID() int64
}

// IsOwner reports whether identity is the owner of resource, by primary key.
func IsOwner(identity *models.UserDB, resource Owned) bool {
	if identity == nil || resource == nil {
		return false
	}
	return identity.ID == resource.OwnerID()
}
