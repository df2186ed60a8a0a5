// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation
//   - Atomic file replacement
//   - Page conversion to JPEG and height limiting
//
// # File Operations
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/scans/one-piece/1042")
//
//	// Replace a file without exposing a partial write
//	err := ioutils.WriteFileAtomic("/scans/one-piece/1042/0.jpg", data)
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from names:
//
//	safe := ioutils.SanitizeFileName("Re:Zero") // Returns "Re_Zero"
//
// # Image Processing
//
// The ImageService handles page normalisation:
//
//	svc := ioutils.NewImageService(90)
//
//	// Rewrite a PNG or WebP page as JPEG, at most 4000px tall
//	changed, err := svc.NormalizePage(ctx, "/scans/one-piece/1042/0.jpg", 4000)
package ioutils
