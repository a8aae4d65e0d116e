package account

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eduadmin/school-backend/pkg/accounts"
)

// AccountKindStore is the store of one account kind (one collection).
type AccountKindStore struct {
	service *AccountDBService
	role    string
}

func (dbService *AccountDBService) CreateIndexesForAccountsCollection(role string) error {
	ctx, cancel := dbService.getContext(context.Background())
	defer cancel()

	_, err := dbService.collectionAccounts(role).Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "createdAt", Value: 1}},
			},
		},
	)
	return err
}

func (s *AccountKindStore) collection() *mongo.Collection {
	return s.service.collectionAccounts(s.role)
}

func (s *AccountKindStore) FindByEmail(ctx context.Context, email string) (accounts.Account, error) {
	ctx, cancel := s.service.getContext(ctx)
	defer cancel()

	var account accounts.Account
	err := s.collection().FindOne(ctx, bson.M{"email": email}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return accounts.Account{}, accounts.ErrAccountNotFound
		}
		return accounts.Account{}, err
	}
	return account, nil
}

func (s *AccountKindStore) FindByID(ctx context.Context, id string) (accounts.Account, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return accounts.Account{}, accounts.ErrAccountNotFound
	}

	ctx, cancel := s.service.getContext(ctx)
	defer cancel()

	var account accounts.Account
	err = s.collection().FindOne(ctx, bson.M{"_id": objID}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return accounts.Account{}, accounts.ErrAccountNotFound
		}
		return accounts.Account{}, err
	}
	return account, nil
}

func (s *AccountKindStore) Create(ctx context.Context, account accounts.Account) (string, error) {
	ctx, cancel := s.service.getContext(ctx)
	defer cancel()

	res, err := s.collection().InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", accounts.ErrEmailTaken
		}
		return "", err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected inserted id type")
	}
	return id.Hex(), nil
}

func (s *AccountKindStore) Replace(ctx context.Context, account accounts.Account) error {
	ctx, cancel := s.service.getContext(ctx)
	defer cancel()

	res, err := s.collection().ReplaceOne(ctx, bson.M{"_id": account.ID}, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return accounts.ErrEmailTaken
		}
		return err
	}
	if res.MatchedCount < 1 {
		return accounts.ErrAccountNotFound
	}
	return nil
}

func (s *AccountKindStore) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return accounts.ErrAccountNotFound
	}

	ctx, cancel := s.service.getContext(ctx)
	defer cancel()

	res, err := s.collection().DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount < 1 {
		return accounts.ErrAccountNotFound
	}
	return nil
}

func (s *AccountKindStore) List(ctx context.Context) ([]accounts.Account, error) {
	ctx, cancel := s.service.getContext(ctx)
	defer cancel()

	cursor, err := s.collection().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	accountList := []accounts.Account{}
	if err := cursor.All(ctx, &accountList); err != nil {
		return nil, err
	}
	return accountList, nil
}
