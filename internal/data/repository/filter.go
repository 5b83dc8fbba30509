package repository

import (
	"fmt"
	"regexp"

	"github.com/satvikmishra44/taskhub/internal/structs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func taskQuery(f *structs.TaskFilter) bson.M {
	q := bson.M{}
	if f == nil {
		return q
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Priority != "" {
		q["priority"] = f.Priority
	}
	if f.DueBeforeTime != nil {
		q["due_date"] = bson.M{"$lte": *f.DueBeforeTime}
	}
	if f.AssigneeID != nil {
		q["assigned_to"] = *f.AssigneeID
	}
	if f.IDs != nil {
		q["_id"] = bson.M{"$in": f.IDs}
	}
	if f.AttachmentPath != "" {
		q["attachments.path"] = f.AttachmentPath
	}
	return q
}

func userQuery(f *structs.UserFilter) bson.M {
	q := bson.M{}
	if f == nil {
		return q
	}
	if f.Role != "" {
		q["role"] = f.Role
	}
	if f.Query != "" {
		pattern := primitiveRegex(f.Query)
		q["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
		}
	}
	return q
}

func primitiveRegex(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

// attachmentRoom matches task id only while it holds at most max-adding
// attachments: the element at index max-adding must not exist yet.
func attachmentRoom(id primitive.ObjectID, max, adding int) bson.M {
	return bson.M{
		"_id": id,
		fmt.Sprintf("attachments.%d", max-adding): bson.M{"$exists": false},
	}
}
