package storage

import "io"

// Store is the file storage collaborator. Refs are opaque relative paths the
// caller persists alongside its rows; URLs are resolved for clients.
type Store interface {
	SaveAvatar(name string, r io.Reader) (ref string, err error)
	SavePhoto(name string, r io.Reader) (ref string, err error)
	Delete(ref string) error
	AvatarURL(ref string) string
	PhotoURL(ref string) string
}
