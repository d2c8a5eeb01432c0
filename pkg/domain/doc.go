// Package domain defines the core business types and errors shared across
// the tonedown service.
//
// This package contains pure domain logic with ZERO external dependencies
// outside the Go standard library. The moderation and rewrite packages
// implement behavior on top of these types; the server package maps domain
// errors onto the HTTP surface. The dependency direction is always:
//
//	Infrastructure → Domain (CORRECT)
//	Domain → Infrastructure (FORBIDDEN)
package domain
