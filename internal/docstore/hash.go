package docstore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// DomainData separates data identifiers from any other hash in the system.
// The version suffix leaves room to change the identity fields later.
const DomainData = "phis-ws/data/v1"

// DefaultDataURIPrefix is prepended to minted data identifiers.
const DefaultDataURIPrefix = "http://www.phenome-fppn.fr/id/data/"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DataID computes the content-addressed identifier of a measurement.
// The value is not part of the identity: storing a corrected value for the
// same provenance, object, variable and instant replaces the record.
func DataID(provenance, object, variable string, date time.Time) (string, error) {
	identity, err := encode([]string{
		provenance,
		object,
		variable,
		date.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", fmt.Errorf("DataID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainData, identity), nil
}
