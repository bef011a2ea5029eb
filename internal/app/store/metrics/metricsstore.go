package metricsstore

import (
	"context"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/system/status"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of per-church totals shown on the dashboard.
type Counts struct {
	Persons  int64            `json:"persons"`
	Members  int64            `json:"members"`
	Visitors int64            `json:"visitors"`
	ByStatus map[string]int64 `json:"by_status"`
	ByType   map[string]int64 `json:"by_type"`

	Families           int64 `json:"families"`
	ActiveMinistries   int64 `json:"active_ministries"`
	UpcomingActivities int64 `json:"upcoming_activities"`
}

// FetchChurchCounts returns the dashboard totals for one church.
// Intentionally tolerant: on error it returns 0 for that counter.
// Upcoming activities are those starting at or after now.
func FetchChurchCounts(ctx context.Context, db *mongo.Database, churchID int64, now time.Time) Counts {
	out := Counts{
		ByStatus: map[string]int64{},
		ByType:   map[string]int64{},
	}
	scope := bson.M{"church_id": churchID}

	// persons, grouped by role/status and by type
	for key, n := range groupCount(ctx, db.Collection("persons"), scope, "$role") {
		switch key {
		case "MEMBER":
			out.Members = n
		case "VISITOR":
			out.Visitors = n
		}
		out.Persons += n
	}
	for key, n := range groupCount(ctx, db.Collection("persons"), scope, "$status") {
		out.ByStatus[key] = n
	}
	for key, n := range groupCount(ctx, db.Collection("persons"), scope, "$type") {
		if key == "" {
			key = "UNKNOWN"
		}
		out.ByType[key] = n
	}

	// families
	if n, err := db.Collection("families").CountDocuments(ctx, scope); err == nil {
		out.Families = n
	}

	// ministries
	if n, err := db.Collection("ministries").CountDocuments(ctx, bson.M{"church_id": churchID, "status": status.Active}); err == nil {
		out.ActiveMinistries = n
	}

	// activities
	if n, err := db.Collection("activities").CountDocuments(ctx, bson.M{"church_id": churchID, "starts_at": bson.M{"$gte": now}}); err == nil {
		out.UpcomingActivities = n
	}

	return out
}

// groupCount counts documents matching filter grouped by field. Documents
// missing the field are reported under "".
func groupCount(ctx context.Context, c *mongo.Collection, filter bson.M, field string) map[string]int64 {
	out := map[string]int64{}
	cur, err := c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{"_id": bson.M{"$ifNull": bson.A{field, ""}}, "n": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
			N  int64  `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			continue
		}
		out[row.ID] = row.N
	}
	return out
}
