package sqldb

import (
	"fmt"
	"regexp"
)

var IdentifierRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// CheckIdentifier rejects names that cannot be spliced into SQL unquoted,
// e.g. a configured table name
func CheckIdentifier(name string) error {
	if !IdentifierRegexp.MatchString(name) {
		return fmt.Errorf("invalid SQL identifier %q", name)
	}
	return nil
}
