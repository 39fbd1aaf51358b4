package extract

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/rspl-generator/constants"
	"github.com/joseph-ayodele/rspl-generator/internal/common"
)

// Document is an uploaded parts manual.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// Empty reports whether no document was supplied.
func (d *Document) Empty() bool {
	return d == nil || (len(d.Data) == 0 && strings.TrimSpace(d.Name) == "")
}

// HashHex returns the hex SHA-256 of the document bytes.
func (d *Document) HashHex() string {
	sum := sha256.Sum256(d.Data)
	return hex.EncodeToString(sum[:])
}

// ValidateDocument accepts PDF documents only. maxBytes <= 0 disables the size check.
func ValidateDocument(d *Document, maxBytes int64) error {
	if d.Empty() {
		return nil
	}

	ext := constants.NormalizeExt(filepath.Ext(d.Name))
	ct := strings.ToLower(strings.TrimSpace(d.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ext != constants.DocumentExt && ct != constants.DocumentContentType {
		return common.InvalidRequest("only PDF documents are accepted (got name=%q content_type=%q)", d.Name, d.ContentType)
	}
	if len(d.Data) == 0 {
		return common.InvalidRequest("document %q is empty", d.Name)
	}
	if !bytes.HasPrefix(d.Data, []byte(constants.DocumentMagic)) {
		return common.InvalidRequest("document %q is not a PDF file", d.Name)
	}
	if maxBytes > 0 && int64(len(d.Data)) > maxBytes {
		return common.InvalidRequest("document %q exceeds %d bytes", d.Name, maxBytes)
	}
	return nil
}

// MaxBytesFromMB converts a megabyte limit into bytes.
func MaxBytesFromMB(mb int) int64 {
	if mb <= 0 {
		return 0
	}
	return int64(mb) * 1024 * 1024
}

func (d *Document) String() string {
	if d == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s (%d bytes)", d.Name, len(d.Data))
}
