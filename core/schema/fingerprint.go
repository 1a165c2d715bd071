package schema

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

// FingerprintParts hashes an ordered list of schema description parts into
// a short stable identifier.
func FingerprintParts(parts []string) string {
	sum := blake3.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:16])
}

// Fingerprint returns a stable hash of the schema's canonical column spec:
// table name, each column's name, storage type, attributes and default, and
// the primary key shape. Two schemas with the same fingerprint generate the
// same table.
func (s *Schema) Fingerprint() string {
	parts := []string{s.Table}
	for _, f := range s.Fields {
		part := f.Name + " " + string(f.Column.Storage)
		if f.Column.Attrs != "" {
			part += " " + f.Column.Attrs
		}
		if f.HasDefault {
			part += fmt.Sprintf(" default %v", f.Default)
		}
		parts = append(parts, part)
	}
	var keyNames []string
	for _, k := range s.PrimaryKey() {
		keyNames = append(keyNames, k.Name)
	}
	parts = append(parts, "pk "+strings.Join(keyNames, ","))
	return FingerprintParts(parts)
}
