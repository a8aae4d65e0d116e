package student

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eduadmin/school-backend/pkg/db"
)

// collection names
const (
	COLLECTION_NAME_STUDENTS        = "students"
	COLLECTION_NAME_FEES_HISTORY    = "feesHistory"
	COLLECTION_NAME_LIBRARY_HISTORY = "libraryHistory"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrDuplicateEmail  = errors.New("email already exists")
	ErrRecordNotFound  = errors.New("record not found")
)

type StudentDBService struct {
	DBClient     *mongo.Client
	timeout      int
	DBNamePrefix string
}

func NewStudentDBService(configs db.DBConfig) (*StudentDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)

	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()

	if err != nil {
		return nil, err
	}

	sdbSc := &StudentDBService{
		DBClient:     dbClient,
		timeout:      configs.Timeout,
		DBNamePrefix: configs.DBNamePrefix,
	}

	if configs.RunIndexCreation {
		sdbSc.CreateDefaultIndexes()
	}
	return sdbSc, nil
}

func (dbService *StudentDBService) getDBName() string {
	return dbService.DBNamePrefix + "school"
}

func (dbService *StudentDBService) getContext(parent context.Context) (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(parent, time.Duration(dbService.timeout)*time.Second)
}

func (dbService *StudentDBService) collectionStudents() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_STUDENTS)
}

func (dbService *StudentDBService) collectionFeesHistory() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_FEES_HISTORY)
}

func (dbService *StudentDBService) collectionLibraryHistory() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_LIBRARY_HISTORY)
}

func (dbService *StudentDBService) CreateDefaultIndexes() {
	if err := dbService.CreateIndexesForStudentsCollection(); err != nil {
		slog.Error("failed to create indexes for students collection", slog.String("error", err.Error()))
	}
	if err := dbService.CreateIndexesForHistoryCollections(); err != nil {
		slog.Error("failed to create indexes for history collections", slog.String("error", err.Error()))
	}
}
