package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sprintjam/sprintjam/internal/domain"
)

const roomCollection = "rooms"

type roomRepository struct {
	col *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *roomRepository {
	return &roomRepository{col: db.Collection(roomCollection)}
}

func (r *roomRepository) Save(ctx context.Context, room *domain.Room) error {
	snap := room.Snapshot()
	_, err := r.col.ReplaceOne(ctx,
		bson.M{"id": snap.ID},
		snap,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save room %s: %w", snap.ID, err)
	}
	return nil
}

func (r *roomRepository) FindByID(ctx context.Context, id string) (*domain.Room, error) {
	var snap domain.RoomSnapshot
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find room %s: %w", id, err)
	}
	return snap.Restore(), nil
}

func (r *roomRepository) FindAll(ctx context.Context) ([]*domain.Room, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []*domain.Room
	for cursor.Next(ctx) {
		var snap domain.RoomSnapshot
		if err := cursor.Decode(&snap); err != nil {
			return nil, fmt.Errorf("decode room: %w", err)
		}
		rooms = append(rooms, snap.Restore())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}
	return rooms, nil
}

func (r *roomRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("delete room %s: %w", id, err)
	}
	return nil
}

func (r *roomRepository) ActiveRoomCount(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-domain.ActiveWindow)
	count, err := r.col.CountDocuments(ctx, bson.M{
		"$or": bson.A{
			bson.M{"users.0": bson.M{"$exists": true}},
			bson.M{"lastActivity": bson.M{"$gte": cutoff}},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("count active rooms: %w", err)
	}
	return count, nil
}

func (r *roomRepository) TotalRoomsCreated(ctx context.Context) (int64, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count rooms: %w", err)
	}
	return count, nil
}

func (r *roomRepository) TotalUsersJoined(ctx context.Context) (int64, error) {
	cursor, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$project", Value: bson.M{"userCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$users", bson.A{}}}}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$userCount"}}}},
	})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Total int64 `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("decode user count: %w", err)
		}
	}
	if err := cursor.Err(); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return result.Total, nil
}
