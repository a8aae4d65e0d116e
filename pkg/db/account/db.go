package account

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eduadmin/school-backend/pkg/accounts"
	"github.com/eduadmin/school-backend/pkg/db"
)

// collection names
const (
	COLLECTION_NAME_ADMINS     = "admins"
	COLLECTION_NAME_LIBRARIANS = "librarians"
	COLLECTION_NAME_STAFF      = "staffs"
)

type AccountDBService struct {
	DBClient     *mongo.Client
	timeout      int
	DBNamePrefix string
}

func NewAccountDBService(configs db.DBConfig) (*AccountDBService, error) {
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

	adbSc := &AccountDBService{
		DBClient:     dbClient,
		timeout:      configs.Timeout,
		DBNamePrefix: configs.DBNamePrefix,
	}

	if configs.RunIndexCreation {
		adbSc.CreateDefaultIndexes()
	}
	return adbSc, nil
}

func (dbService *AccountDBService) getDBName() string {
	return dbService.DBNamePrefix + "school"
}

func (dbService *AccountDBService) getContext(parent context.Context) (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(parent, time.Duration(dbService.timeout)*time.Second)
}

func collectionNameForRole(role string) string {
	switch role {
	case accounts.ROLE_ADMIN:
		return COLLECTION_NAME_ADMINS
	case accounts.ROLE_LIBRARIAN:
		return COLLECTION_NAME_LIBRARIANS
	case accounts.ROLE_STAFF:
		return COLLECTION_NAME_STAFF
	}
	return role + "s"
}

func (dbService *AccountDBService) collectionAccounts(role string) *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(collectionNameForRole(role))
}

// ForRole returns the store handle for one account kind; the handle satisfies
// the store collaborator of the credential lifecycle.
func (dbService *AccountDBService) ForRole(role string) *AccountKindStore {
	return &AccountKindStore{
		service: dbService,
		role:    role,
	}
}

func (dbService *AccountDBService) CreateDefaultIndexes() {
	for _, role := range []string{accounts.ROLE_ADMIN, accounts.ROLE_LIBRARIAN, accounts.ROLE_STAFF} {
		if err := dbService.CreateIndexesForAccountsCollection(role); err != nil {
			slog.Error("failed to create indexes for accounts collection", slog.String("role", role), slog.String("error", err.Error()))
		}
	}
}
