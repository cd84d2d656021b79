package transaction

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// ValidID accepts the UUIDs this service generates and the 24-character hex
// ObjectIds of records written by the earlier Mongo deployment.
func ValidID(id string) bool {
	if _, err := uuid.Parse(id); err == nil {
		return true
	}
	return IsObjectIDHex(id)
}

func IsObjectIDHex(id string) bool {
	if len(id) != 24 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}
