package domain

import (
	"log/slog"
	"strings"
)

// Spreadsheet columns a credential row must carry.
const (
	ColumnAddress    = "address"
	ColumnPrivateKey = "privatekey"
)

// Row is a single untyped spreadsheet row keyed by normalized header name.
type Row map[string]string

// Credential is one externally-owned account the batch submits from.
type Credential struct {
	Address    string
	PrivateKey string
}

// LogValue keeps the private key out of log output.
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(slog.String("address", c.Address))
}

// Credential converts the row into a Credential. It reports false when the
// address or private key cell is empty.
func (r Row) Credential() (Credential, bool) {
	address := strings.TrimSpace(r[ColumnAddress])
	privateKey := strings.TrimSpace(r[ColumnPrivateKey])
	if address == "" || privateKey == "" {
		return Credential{}, false
	}
	return Credential{Address: address, PrivateKey: privateKey}, true
}

// ValidCredentials keeps the rows that carry both an address and a private
// key, preserving their order.
func ValidCredentials(rows []Row) []Credential {
	credentials := make([]Credential, 0, len(rows))
	for _, row := range rows {
		if credential, ok := row.Credential(); ok {
			credentials = append(credentials, credential)
		}
	}
	return credentials
}

// NormalizeHeader maps a header cell onto the key used in Row.
func NormalizeHeader(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
