// Package media talks to the external object store that hosts listing
// images. Listings persist only the resulting URLs.
package media

import "context"

// Store uploads staged files and deletes previously uploaded objects.
type Store interface {
	// Upload sends the file at localPath to the media host and returns
	// the public URL of the stored object.
	Upload(ctx context.Context, localPath string) (string, error)
	// Delete removes the object a previous Upload returned url for.
	Delete(ctx context.Context, url string) error
}
