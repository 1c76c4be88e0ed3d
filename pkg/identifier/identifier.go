package identifier

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourdesk-service/pkg/apperr"
)

// Encode converts a store-native identifier to its external hex string form.
func Encode(id primitive.ObjectID) string {
	return id.Hex()
}

// Decode converts the external string form back to a store-native identifier.
// Fails with apperr.ErrInvalidIdentifier when the token has the wrong length
// or charset.
func Decode(token string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(token)
	if err != nil {
		return primitive.NilObjectID, apperr.InvalidIdentifierf(token)
	}
	return id, nil
}

// New returns a fresh store-native identifier. Identifiers are never reused.
func New() primitive.ObjectID {
	return primitive.NewObjectID()
}
