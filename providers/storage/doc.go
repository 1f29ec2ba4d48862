// Package storage provides the local, Cloudinary and S3 implementations of
// core.StorageService. Local storage writes to disk; the cloud providers build
// public asset URLs but have no upload client wired.
package storage
