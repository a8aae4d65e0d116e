package student

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func (dbService *StudentDBService) CreateIndexesForHistoryCollections() error {
	ctx, cancel := dbService.getContext(context.Background())
	defer cancel()

	_, err := dbService.collectionFeesHistory().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{{Key: "student", Value: 1}},
			},
		},
	)
	if err != nil {
		return err
	}

	_, err = dbService.collectionLibraryHistory().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{{Key: "student", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "returnDate", Value: 1}},
			},
		},
	)
	return err
}

func (dbService *StudentDBService) AddFeeRecord(ctx context.Context, record FeeRecord) (string, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	now := time.Now().Unix()
	record.CreatedAt = now
	record.UpdatedAt = now

	res, err := dbService.collectionFeesHistory().InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected inserted id type")
	}
	return id.Hex(), nil
}

func (dbService *StudentDBService) GetFeesForStudent(ctx context.Context, studentID string) ([]FeeRecord, error) {
	objID, err := primitive.ObjectIDFromHex(studentID)
	if err != nil {
		return nil, ErrStudentNotFound
	}

	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	cursor, err := dbService.collectionFeesHistory().Find(ctx, bson.M{"student": objID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []FeeRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (dbService *StudentDBService) AddLibraryRecord(ctx context.Context, record LibraryRecord) (string, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	now := time.Now().Unix()
	record.CreatedAt = now
	record.UpdatedAt = now

	res, err := dbService.collectionLibraryHistory().InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected inserted id type")
	}
	return id.Hex(), nil
}

func (dbService *StudentDBService) GetLibraryHistoryForStudent(ctx context.Context, studentID string) ([]LibraryRecord, error) {
	objID, err := primitive.ObjectIDFromHex(studentID)
	if err != nil {
		return nil, ErrStudentNotFound
	}

	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	cursor, err := dbService.collectionLibraryHistory().Find(ctx, bson.M{"student": objID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []LibraryRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// MarkLibraryRecordReturned sets the return date and the fine on a lending
// record.
func (dbService *StudentDBService) MarkLibraryRecordReturned(ctx context.Context, recordID string, returnDate time.Time, fine float64) error {
	objID, err := primitive.ObjectIDFromHex(recordID)
	if err != nil {
		return ErrRecordNotFound
	}

	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"returnDate": returnDate,
		"fine":       fine,
		"updatedAt":  time.Now().Unix(),
	}}
	res, err := dbService.collectionLibraryHistory().UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return ErrRecordNotFound
	}
	return nil
}
