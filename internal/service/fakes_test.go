package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/events"
	"github.com/vrcface/server/internal/repository"
)

type fakeIdentityRepo struct {
	create         func(ctx context.Context, identity *domain.Identity) error
	getByID        func(ctx context.Context, id string) (*domain.Identity, error)
	getByEmail     func(ctx context.Context, email string) (*domain.Identity, error)
	updatePassword func(ctx context.Context, id, hash string) error
	delete         func(ctx context.Context, id string) error
}

func (f *fakeIdentityRepo) Create(ctx context.Context, identity *domain.Identity) error {
	if f.create == nil {
		return nil
	}
	return f.create(ctx, identity)
}

func (f *fakeIdentityRepo) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	if f.getByID == nil {
		return nil, pgx.ErrNoRows
	}
	return f.getByID(ctx, id)
}

func (f *fakeIdentityRepo) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	if f.getByEmail == nil {
		return nil, pgx.ErrNoRows
	}
	return f.getByEmail(ctx, email)
}

func (f *fakeIdentityRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	if f.updatePassword == nil {
		return nil
	}
	return f.updatePassword(ctx, id, hash)
}

func (f *fakeIdentityRepo) Delete(ctx context.Context, id string) error {
	if f.delete == nil {
		return nil
	}
	return f.delete(ctx, id)
}

type fakeAccountRepo struct {
	create         func(ctx context.Context, account *domain.Account) error
	update         func(ctx context.Context, account *domain.Account) error
	getByID        func(ctx context.Context, id string) (*domain.Account, error)
	usernameExists func(ctx context.Context, username string) (bool, error)
	getProfile     func(ctx context.Context, username string) (*domain.Profile, error)
	list           func(ctx context.Context, filter repository.AccountFilter) ([]domain.Account, error)
	count          func(ctx context.Context, filter repository.AccountFilter) (int64, error)
	delete         func(ctx context.Context, id string) error
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	if f.create == nil {
		return nil
	}
	return f.create(ctx, account)
}

func (f *fakeAccountRepo) Update(ctx context.Context, account *domain.Account) error {
	if f.update == nil {
		return nil
	}
	return f.update(ctx, account)
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if f.getByID == nil {
		return nil, pgx.ErrNoRows
	}
	return f.getByID(ctx, id)
}

func (f *fakeAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeAccountRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	if f.usernameExists == nil {
		return false, nil
	}
	return f.usernameExists(ctx, username)
}

func (f *fakeAccountRepo) GetProfile(ctx context.Context, username string) (*domain.Profile, error) {
	if f.getProfile == nil {
		return nil, pgx.ErrNoRows
	}
	return f.getProfile(ctx, username)
}

func (f *fakeAccountRepo) List(ctx context.Context, filter repository.AccountFilter) ([]domain.Account, error) {
	if f.list == nil {
		return []domain.Account{}, nil
	}
	return f.list(ctx, filter)
}

func (f *fakeAccountRepo) Count(ctx context.Context, filter repository.AccountFilter) (int64, error) {
	if f.count == nil {
		return 0, nil
	}
	return f.count(ctx, filter)
}

func (f *fakeAccountRepo) Delete(ctx context.Context, id string) error {
	if f.delete == nil {
		return nil
	}
	return f.delete(ctx, id)
}

// accountsByID serves GetByID from a fixed set.
func accountsByID(accounts ...domain.Account) func(context.Context, string) (*domain.Account, error) {
	byID := map[string]domain.Account{}
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return func(_ context.Context, id string) (*domain.Account, error) {
		a, ok := byID[id]
		if !ok {
			return nil, pgx.ErrNoRows
		}
		return &a, nil
	}
}

type fakeModelRepo struct {
	create             func(ctx context.Context, model *domain.Model) error
	update             func(ctx context.Context, model *domain.Model) error
	getByID            func(ctx context.Context, id string) (*domain.Model, error)
	delete             func(ctx context.Context, id string) error
	list               func(ctx context.Context, filter repository.ModelFilter) ([]domain.Model, error)
	count              func(ctx context.Context, filter repository.ModelFilter) (int64, error)
	incrementDownloads func(ctx context.Context, id string) (int64, error)
}

func (f *fakeModelRepo) Create(ctx context.Context, model *domain.Model) error {
	if f.create == nil {
		model.CreatedAt = time.Now()
		return nil
	}
	return f.create(ctx, model)
}

func (f *fakeModelRepo) Update(ctx context.Context, model *domain.Model) error {
	if f.update == nil {
		return nil
	}
	return f.update(ctx, model)
}

func (f *fakeModelRepo) GetByID(ctx context.Context, id string) (*domain.Model, error) {
	if f.getByID == nil {
		return nil, pgx.ErrNoRows
	}
	return f.getByID(ctx, id)
}

func (f *fakeModelRepo) Delete(ctx context.Context, id string) error {
	if f.delete == nil {
		return nil
	}
	return f.delete(ctx, id)
}

func (f *fakeModelRepo) List(ctx context.Context, filter repository.ModelFilter) ([]domain.Model, error) {
	if f.list == nil {
		return []domain.Model{}, nil
	}
	return f.list(ctx, filter)
}

func (f *fakeModelRepo) Count(ctx context.Context, filter repository.ModelFilter) (int64, error) {
	if f.count == nil {
		return 0, nil
	}
	return f.count(ctx, filter)
}

func (f *fakeModelRepo) IncrementDownloads(ctx context.Context, id string) (int64, error) {
	if f.incrementDownloads == nil {
		return 1, nil
	}
	return f.incrementDownloads(ctx, id)
}

func modelsByID(models ...domain.Model) func(context.Context, string) (*domain.Model, error) {
	byID := map[string]domain.Model{}
	for _, m := range models {
		byID[m.ID] = m
	}
	return func(_ context.Context, id string) (*domain.Model, error) {
		m, ok := byID[id]
		if !ok {
			return nil, pgx.ErrNoRows
		}
		return &m, nil
	}
}

type fakeTagRepo struct {
	create  func(ctx context.Context, tag *domain.Tag) error
	rename  func(ctx context.Context, id, name string) (*domain.Tag, error)
	getByID func(ctx context.Context, id string) (*domain.Tag, error)
	delete  func(ctx context.Context, id string) error
	list    func(ctx context.Context) ([]domain.Tag, error)
}

func (f *fakeTagRepo) Create(ctx context.Context, tag *domain.Tag) error {
	if f.create == nil {
		return nil
	}
	return f.create(ctx, tag)
}

func (f *fakeTagRepo) Rename(ctx context.Context, id, name string) (*domain.Tag, error) {
	if f.rename == nil {
		return &domain.Tag{ID: id, Name: name}, nil
	}
	return f.rename(ctx, id, name)
}

func (f *fakeTagRepo) GetByID(ctx context.Context, id string) (*domain.Tag, error) {
	if f.getByID == nil {
		return nil, pgx.ErrNoRows
	}
	return f.getByID(ctx, id)
}

func (f *fakeTagRepo) Delete(ctx context.Context, id string) error {
	if f.delete == nil {
		return nil
	}
	return f.delete(ctx, id)
}

func (f *fakeTagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	if f.list == nil {
		return []domain.Tag{}, nil
	}
	return f.list(ctx)
}

type fakeSocialRepo struct {
	likes     map[string]bool
	favorites map[string]bool
	follows   map[string]bool
}

func newFakeSocialRepo() *fakeSocialRepo {
	return &fakeSocialRepo{likes: map[string]bool{}, favorites: map[string]bool{}, follows: map[string]bool{}}
}

func (f *fakeSocialRepo) Like(_ context.Context, userID, modelID string) (int64, error) {
	f.likes[userID+"/"+modelID] = true
	return f.countLikes(modelID), nil
}

func (f *fakeSocialRepo) Unlike(_ context.Context, userID, modelID string) (int64, error) {
	delete(f.likes, userID+"/"+modelID)
	return f.countLikes(modelID), nil
}

func (f *fakeSocialRepo) countLikes(modelID string) int64 {
	var n int64
	for k := range f.likes {
		if len(k) > len(modelID) && k[len(k)-len(modelID):] == modelID {
			n++
		}
	}
	return n
}

func (f *fakeSocialRepo) IsLiked(_ context.Context, userID, modelID string) (bool, error) {
	return f.likes[userID+"/"+modelID], nil
}

func (f *fakeSocialRepo) Favorite(_ context.Context, userID, modelID string) error {
	f.favorites[userID+"/"+modelID] = true
	return nil
}

func (f *fakeSocialRepo) Unfavorite(_ context.Context, userID, modelID string) error {
	delete(f.favorites, userID+"/"+modelID)
	return nil
}

func (f *fakeSocialRepo) IsFavorited(_ context.Context, userID, modelID string) (bool, error) {
	return f.favorites[userID+"/"+modelID], nil
}

func (f *fakeSocialRepo) ListFavorites(context.Context, string, domain.Page) ([]domain.Model, error) {
	return []domain.Model{}, nil
}

func (f *fakeSocialRepo) CountFavorites(context.Context, string) (int64, error) {
	return int64(len(f.favorites)), nil
}

func (f *fakeSocialRepo) Follow(_ context.Context, followerID, followeeID string) error {
	f.follows[followerID+"/"+followeeID] = true
	return nil
}

func (f *fakeSocialRepo) Unfollow(_ context.Context, followerID, followeeID string) error {
	delete(f.follows, followerID+"/"+followeeID)
	return nil
}

func (f *fakeSocialRepo) IsFollowing(_ context.Context, followerID, followeeID string) (bool, error) {
	return f.follows[followerID+"/"+followeeID], nil
}

type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	out := make([]events.EventType, 0, len(d.published))
	for _, e := range d.published {
		out = append(out, e.Type)
	}
	return out
}
