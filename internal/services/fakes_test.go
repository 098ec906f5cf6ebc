package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"eventshare/internal/domain"
)

// In-memory fakes shared by the service tests.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	creds     *fakeCredentialRepo // CreateWithCredential writes here too
	createErr error
}

func newFakeUserRepo(creds *fakeCredentialRepo) *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), creds: creds}
}

func (f *fakeUserRepo) CreateWithCredential(ctx context.Context, user *domain.User, passwordHash, refreshToken string) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.byID {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	f.byID[user.ID] = user
	if f.creds != nil {
		rt := refreshToken
		f.creds.byUserID[user.ID] = &domain.Credential{
			UserID:       user.ID,
			PasswordHash: passwordHash,
			RefreshToken: &rt,
		}
	}
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := f.byID[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, u := range f.byID {
		if id != user.ID && u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) DeleteCascade(ctx context.Context, userID string) error {
	if _, ok := f.byID[userID]; !ok {
		return domain.ErrUserNotFound
	}
	delete(f.byID, userID)
	if f.creds != nil {
		delete(f.creds.byUserID, userID)
	}
	return nil
}

// fakeCredentialRepo is an in-memory CredentialRepository.
type fakeCredentialRepo struct {
	byUserID map[string]*domain.Credential
	setErr   error
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{byUserID: make(map[string]*domain.Credential)}
}

func (f *fakeCredentialRepo) GetByUserID(ctx context.Context, userID string) (*domain.Credential, error) {
	if c, ok := f.byUserID[userID]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCredentialRepo) SetRefreshToken(ctx context.Context, userID string, refreshToken *string) error {
	if f.setErr != nil {
		return f.setErr
	}
	c, ok := f.byUserID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	c.RefreshToken = refreshToken
	return nil
}

func (f *fakeCredentialRepo) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	c, ok := f.byUserID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	c.PasswordHash = passwordHash
	return nil
}

// fakeHasher records passwords as "hashed:<password>".
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// fakeTokenManager issues deterministic tokens and parses them back.
type fakeTokenManager struct {
	issued int
}

func (f *fakeTokenManager) IssuePair(claims domain.TokenClaims) (*domain.TokenPair, error) {
	f.issued++
	return &domain.TokenPair{
		AccessToken:  fmt.Sprintf("access:%s:%d", claims.UserID, f.issued),
		RefreshToken: fmt.Sprintf("refresh:%s:%d", claims.UserID, f.issued),
	}, nil
}

func (f *fakeTokenManager) VerifyAccess(token string) (*domain.TokenClaims, error) {
	return f.parse(token, "access:")
}

func (f *fakeTokenManager) VerifyRefresh(token string) (*domain.TokenClaims, error) {
	return f.parse(token, "refresh:")
}

func (f *fakeTokenManager) parse(token, prefix string) (*domain.TokenClaims, error) {
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return nil, domain.ErrTokenInvalid
	}
	rest := token[len(prefix):]
	for i := len(rest) - 1; i >= 0; i-- {
		if rest[i] == ':' {
			return &domain.TokenClaims{UserID: rest[:i]}, nil
		}
	}
	return nil, domain.ErrTokenInvalid
}

// fakeEventRepo is an in-memory EventRepository backed by a fakeMembershipRepo
// so CreateWithOwner and DeleteCascade touch both.
type fakeEventRepo struct {
	byID        map[string]*domain.Event
	memberships *fakeMembershipRepo
	photos      *fakePhotoRepo
	nextID      int
	createErr   error
	updateErr   error
}

func newFakeEventRepo(memberships *fakeMembershipRepo, photos *fakePhotoRepo) *fakeEventRepo {
	return &fakeEventRepo{
		byID:        make(map[string]*domain.Event),
		memberships: memberships,
		photos:      photos,
		nextID:      1,
	}
}

func (f *fakeEventRepo) CreateWithOwner(ctx context.Context, event *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, e := range f.byID {
		if e.InvitationToken == event.InvitationToken {
			return domain.ErrConflict
		}
	}
	event.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[event.ID] = event
	if f.memberships != nil {
		_, _ = f.memberships.Grant(ctx, event.ID, event.CreatorID, domain.AccessAdmin)
	}
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetByInvitationToken(ctx context.Context, token string) (*domain.Event, error) {
	for _, e := range f.byID {
		if e.InvitationToken == token {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListByMember(ctx context.Context, userID string) ([]*domain.EventWithAccess, error) {
	var out []*domain.EventWithAccess
	for _, e := range f.byID {
		if f.memberships == nil {
			continue
		}
		level, err := f.memberships.GetLevel(ctx, e.ID, userID)
		if err != nil {
			continue
		}
		out = append(out, &domain.EventWithAccess{Event: e, AccessLevel: level})
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	e, ok := f.byID[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = patch.Description
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	e.UpdatedAt = time.Now()
	return e, nil
}

func (f *fakeEventRepo) SetInvitationToken(ctx context.Context, eventID, token string) error {
	e, ok := f.byID[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	for id, other := range f.byID {
		if id != eventID && other.InvitationToken == token {
			return domain.ErrConflict
		}
	}
	e.InvitationToken = token
	return nil
}

func (f *fakeEventRepo) DeleteCascade(ctx context.Context, eventID string, deleteBlob func(url string)) error {
	if _, ok := f.byID[eventID]; !ok {
		return domain.ErrNotFound
	}
	if f.photos != nil {
		for id, p := range f.photos.byID {
			if p.EventID == eventID {
				deleteBlob(p.BlobURL)
				delete(f.photos.byID, id)
			}
		}
	}
	if f.memberships != nil {
		for key := range f.memberships.levels {
			if key.eventID == eventID {
				delete(f.memberships.levels, key)
			}
		}
	}
	delete(f.byID, eventID)
	return nil
}

type membershipKey struct {
	eventID string
	userID  string
}

// fakeMembershipRepo is an in-memory MembershipRepository.
type fakeMembershipRepo struct {
	levels   map[membershipKey]domain.AccessLevel
	grantErr error
	levelErr error
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{levels: make(map[membershipKey]domain.AccessLevel)}
}

func (f *fakeMembershipRepo) GetLevel(ctx context.Context, eventID, userID string) (domain.AccessLevel, error) {
	if f.levelErr != nil {
		return 0, f.levelErr
	}
	level, ok := f.levels[membershipKey{eventID, userID}]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return level, nil
}

func (f *fakeMembershipRepo) Grant(ctx context.Context, eventID, userID string, level domain.AccessLevel) (*domain.Membership, error) {
	if f.grantErr != nil {
		return nil, f.grantErr
	}
	key := membershipKey{eventID, userID}
	if existing, ok := f.levels[key]; ok {
		return &domain.Membership{EventID: eventID, UserID: userID, AccessLevel: existing}, nil
	}
	f.levels[key] = level
	return &domain.Membership{EventID: eventID, UserID: userID, AccessLevel: level}, nil
}

func (f *fakeMembershipRepo) SetLevel(ctx context.Context, eventID, userID string, level domain.AccessLevel) error {
	key := membershipKey{eventID, userID}
	if _, ok := f.levels[key]; !ok {
		return domain.ErrNotFound
	}
	f.levels[key] = level
	return nil
}

func (f *fakeMembershipRepo) Remove(ctx context.Context, eventID, userID string) error {
	key := membershipKey{eventID, userID}
	if _, ok := f.levels[key]; !ok {
		return domain.ErrNotFound
	}
	delete(f.levels, key)
	return nil
}

func (f *fakeMembershipRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	var out []*domain.Participant
	for level := domain.AccessAdmin; level <= domain.AccessViewer; level++ {
		for key, l := range f.levels {
			if key.eventID == eventID && l == level {
				out = append(out, &domain.Participant{UserID: key.userID, AccessLevel: l})
			}
		}
	}
	return out, nil
}

// fakePhotoRepo is an in-memory PhotoRepository.
type fakePhotoRepo struct {
	byID      map[string]*domain.Photo
	nextID    int
	createErr error
}

func newFakePhotoRepo() *fakePhotoRepo {
	return &fakePhotoRepo{byID: make(map[string]*domain.Photo), nextID: 1}
}

func (f *fakePhotoRepo) Create(ctx context.Context, photo *domain.Photo) error {
	if f.createErr != nil {
		return f.createErr
	}
	photo.ID = fmt.Sprintf("ph-%d", f.nextID)
	f.nextID++
	f.byID[photo.ID] = photo
	return nil
}

func (f *fakePhotoRepo) GetByID(ctx context.Context, id string) (*domain.Photo, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakePhotoRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Photo, error) {
	var out []*domain.Photo
	for _, p := range f.byID {
		if p.EventID == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePhotoRepo) ListByUploader(ctx context.Context, userID string) ([]*domain.Photo, error) {
	var out []*domain.Photo
	for _, p := range f.byID {
		if p.UploaderID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePhotoRepo) ListByMemberEvents(ctx context.Context, userID string) ([]*domain.Photo, error) {
	return nil, nil
}

func (f *fakePhotoRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	n := 0
	for _, p := range f.byID {
		if p.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (f *fakePhotoRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeBlobStore records puts and deletes; failures are switchable per call.
type fakeBlobStore struct {
	nextID    int
	stored    map[string]bool
	deleted   []string
	putErr    error
	deleteErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{nextID: 1, stored: make(map[string]bool)}
}

func (f *fakeBlobStore) Put(ctx context.Context, body io.Reader, contentType, suggestedName string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	url := fmt.Sprintf("https://blobs.test/%d-%s", f.nextID, suggestedName)
	f.nextID++
	f.stored[url] = true
	return url, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.stored, url)
	return nil
}
