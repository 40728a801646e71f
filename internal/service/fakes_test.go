package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lmdl25/kenility-challenge/internal/model"
	"github.com/lmdl25/kenility-challenge/internal/repository"
	"github.com/lmdl25/kenility-challenge/internal/storage/db"
	"github.com/lmdl25/kenility-challenge/internal/storage/objstore"
)

// fakeDB satisfies db.DB for services that only use WithTx. The raw query
// methods are never reached because the fake repositories intercept all
// store access.
type fakeDB struct {
	txErr error
}

func (f *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, nil
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (f *fakeDB) WithTx(ctx context.Context, txFunc func(db.DB) error) error {
	if f.txErr != nil {
		return f.txErr
	}
	return txFunc(f)
}

type fakeProductRepo struct {
	products map[uuid.UUID]model.Product
	bySku    map[string]model.Product

	findByIDErr error
	createErr   error
	updateErr   error

	findByIDCalls int
	created       []model.Product
	imageUpdates  map[uuid.UUID]string
}

func newFakeProductRepo(products ...model.Product) *fakeProductRepo {
	r := &fakeProductRepo{
		products:     map[uuid.UUID]model.Product{},
		bySku:        map[string]model.Product{},
		imageUpdates: map[uuid.UUID]string{},
	}
	for _, p := range products {
		r.products[p.ID] = p
		r.bySku[p.Sku] = p
	}
	return r
}

func (r *fakeProductRepo) WithDB(db.DB) repository.ProductRepository { return r }

func (r *fakeProductRepo) CreateProduct(_ context.Context, product model.Product) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, product)
	r.products[product.ID] = product
	r.bySku[product.Sku] = product
	return nil
}

func (r *fakeProductRepo) FindProductByID(_ context.Context, id uuid.UUID) (model.Product, error) {
	r.findByIDCalls++
	if r.findByIDErr != nil {
		return model.Product{}, r.findByIDErr
	}
	product, ok := r.products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return product, nil
}

func (r *fakeProductRepo) FindProductBySku(_ context.Context, sku string) (model.Product, error) {
	product, ok := r.bySku[sku]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return product, nil
}

func (r *fakeProductRepo) UpdateProductImageURL(_ context.Context, id uuid.UUID, imageURL string) (model.Product, error) {
	if r.updateErr != nil {
		return model.Product{}, r.updateErr
	}
	product, ok := r.products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	product.ImageURL = &imageURL
	r.products[id] = product
	r.imageUpdates[id] = imageURL
	return product, nil
}

type fakeOrderRepo struct {
	orders map[uuid.UUID]model.Order

	createErr  error
	updateErr  error
	sumErr     error
	highestErr error

	created []model.Order
	sum     float64

	sumStart time.Time
	sumEnd   time.Time
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uuid.UUID]model.Order{}}
}

func (r *fakeOrderRepo) WithDB(db.DB) repository.OrderRepository { return r }

func (r *fakeOrderRepo) CreateOrder(_ context.Context, order model.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, order)
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) UpdateOrder(_ context.Context, id uuid.UUID, params repository.UpdateOrderParams) (model.Order, error) {
	if r.updateErr != nil {
		return model.Order{}, r.updateErr
	}
	order, ok := r.orders[id]
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	if params.ClientName != nil {
		order.ClientName = *params.ClientName
	}
	if params.ProductList != nil {
		order.ProductList = params.ProductList
	}
	if params.Total != nil {
		order.Total = *params.Total
	}
	r.orders[id] = order
	return order, nil
}

func (r *fakeOrderRepo) SumOrderTotalsCreatedBetween(_ context.Context, start, end time.Time) (float64, error) {
	if r.sumErr != nil {
		return 0, r.sumErr
	}
	r.sumStart = start
	r.sumEnd = end
	return r.sum, nil
}

func (r *fakeOrderRepo) FindHighestTotalOrder(context.Context) (model.Order, error) {
	if r.highestErr != nil {
		return model.Order{}, r.highestErr
	}
	var highest model.Order
	found := false
	for _, order := range r.orders {
		if !found || order.Total > highest.Total {
			highest = order
			found = true
		}
	}
	if !found {
		return model.Order{}, repository.ErrNotFound
	}
	return highest, nil
}

type fakeOutboxRepo struct {
	createErr error
	msgs      []repository.CreateOutboxMsgParams
}

func (r *fakeOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r *fakeOutboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.msgs = append(r.msgs, params)
	return nil
}

func (r *fakeOutboxRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}

type fakeUserRepo struct {
	users map[string]model.User

	findErr   error
	createErr error
	tokenErr  error

	created []model.User
	tokens  map[string]string
}

func newFakeUserRepo(users ...model.User) *fakeUserRepo {
	r := &fakeUserRepo{
		users:  map[string]model.User{},
		tokens: map[string]string{},
	}
	for _, u := range users {
		r.users[u.Username] = u
	}
	return r
}

func (r *fakeUserRepo) WithDB(db.DB) repository.UserRepository { return r }

func (r *fakeUserRepo) CreateUser(_ context.Context, user model.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, user)
	r.users[user.Username] = user
	return nil
}

func (r *fakeUserRepo) FindUserByUsername(_ context.Context, username string) (model.User, error) {
	if r.findErr != nil {
		return model.User{}, r.findErr
	}
	user, ok := r.users[username]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) UpdateUserToken(_ context.Context, username, token string) error {
	if r.tokenErr != nil {
		return r.tokenErr
	}
	if _, ok := r.users[username]; !ok {
		return repository.ErrNotFound
	}
	r.tokens[username] = token
	return nil
}

type fakeStorage struct {
	uploadErr error
	uploads   []objstore.UploadInput
	result    objstore.UploadResult
}

func (s *fakeStorage) Upload(_ context.Context, input objstore.UploadInput) (objstore.UploadResult, error) {
	if s.uploadErr != nil {
		return objstore.UploadResult{}, s.uploadErr
	}
	s.uploads = append(s.uploads, input)
	return s.result, nil
}

type fakeTokenIssuer struct {
	token string
	err   error
}

func (f *fakeTokenIssuer) Issue(string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}
