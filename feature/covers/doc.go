// Package covers copies book cover images into the object storage bucket so
// that book records link a stable URL instead of the platform's CDN.
//
// Objects are named after the MD5 of the source URL, which makes mirroring
// idempotent: an object that already exists is linked without downloading
// the image again.
package covers
