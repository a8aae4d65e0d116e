package student

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (dbService *StudentDBService) CreateIndexesForStudentsCollection() error {
	ctx, cancel := dbService.getContext(context.Background())
	defer cancel()

	_, err := dbService.collectionStudents().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "contactInfo.email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "status", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "class", Value: 1}},
			},
		},
	)
	return err
}

func (dbService *StudentDBService) AddStudent(ctx context.Context, student Student) (string, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	now := time.Now().Unix()
	student.CreatedAt = now
	student.UpdatedAt = now
	if student.Status == "" {
		student.Status = STATUS_ACTIVE
	}
	if student.EnrollmentDate.IsZero() {
		student.EnrollmentDate = time.Now()
	}

	res, err := dbService.collectionStudents().InsertOne(ctx, student)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicateEmail
		}
		return "", err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected inserted id type")
	}
	return id.Hex(), nil
}

// GetStudents returns one page of students matching the filter, plus the
// total match count.
func (dbService *StudentDBService) GetStudents(ctx context.Context, filter bson.M, sort bson.M, page int64, limit int64) ([]Student, int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	count, err := dbService.collectionStudents().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	if len(sort) > 0 {
		opts.SetSort(sort)
	}

	cursor, err := dbService.collectionStudents().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	students := []Student{}
	if err := cursor.All(ctx, &students); err != nil {
		return nil, 0, err
	}
	return students, count, nil
}

func (dbService *StudentDBService) GetStudentByID(ctx context.Context, id string) (Student, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Student{}, ErrStudentNotFound
	}

	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	var student Student
	err = dbService.collectionStudents().FindOne(ctx, bson.M{"_id": objID}).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Student{}, ErrStudentNotFound
		}
		return Student{}, err
	}
	return student, nil
}

func (dbService *StudentDBService) FindStudentByEmail(ctx context.Context, email string) (Student, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	var student Student
	err := dbService.collectionStudents().FindOne(ctx, bson.M{"contactInfo.email": email}).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Student{}, ErrStudentNotFound
		}
		return Student{}, err
	}
	return student, nil
}

// UpdateStudent applies the non-zero fields of the patch.
func (dbService *StudentDBService) UpdateStudent(ctx context.Context, id string, patch StudentPatch) (Student, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Student{}, ErrStudentNotFound
	}

	update := bson.M{"updatedAt": time.Now().Unix()}
	if patch.Name != "" {
		update["name"] = patch.Name
	}
	if patch.Class != "" {
		update["class"] = patch.Class
	}
	if patch.Status != "" {
		update["status"] = patch.Status
	}
	if patch.ContactInfo != nil {
		update["contactInfo"] = *patch.ContactInfo
	}
	if patch.Guardian != nil {
		update["guardian"] = *patch.Guardian
	}

	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var student Student
	err = dbService.collectionStudents().FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": update}, opts).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Student{}, ErrStudentNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return Student{}, ErrDuplicateEmail
		}
		return Student{}, err
	}
	return student, nil
}

// DeleteStudent removes the student and all fees and library records that
// reference it.
func (dbService *StudentDBService) DeleteStudent(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrStudentNotFound
	}

	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	if _, err := dbService.collectionLibraryHistory().DeleteMany(ctx, bson.M{"student": objID}); err != nil {
		return err
	}
	if _, err := dbService.collectionFeesHistory().DeleteMany(ctx, bson.M{"student": objID}); err != nil {
		return err
	}

	res, err := dbService.collectionStudents().DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount < 1 {
		return ErrStudentNotFound
	}
	return nil
}
