package constants

import "strings"

// DocumentContentType is the only accepted document type.
const DocumentContentType = "application/pdf"

// DocumentExt is the extension (lowercase, no dot) of the accepted document type.
const DocumentExt = "pdf"

// DocumentMagic is the header every accepted document starts with.
const DocumentMagic = "%PDF-"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
