// Package docid matches document ids that may be stored either as strings
// or, for records written by the earlier deployment, as ObjectIds.
package docid

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filter returns an {_id: ...} query for id.
func Filter(id string) bson.M {
	return bson.M{"_id": Match(id)}
}

// Match is the _id value to query with. A 24-hex id matches both its string
// form and the ObjectId it encodes.
func Match(id string) interface{} {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return id
	}
	return bson.M{"$in": bson.A{id, oid}}
}
