package handlers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"metawall/models"
	"metawall/notify"
	"metawall/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[primitive.ObjectID]*models.User{}}
}

// public returns a copy without the password hash.
func (f *fakeUsers) public(u *models.User) *models.User {
	cp := *u
	cp.Password = ""
	cp.Following = append([]models.FollowEdge{}, u.Following...)
	cp.Followers = append([]models.FollowEdge{}, u.Followers...)
	return &cp
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return f.public(u), nil
}

func (f *fakeUsers) findEmail(email string) *models.User {
	for _, u := range f.byID {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u := f.findEmail(email); u != nil {
		return f.public(u), nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) FindByEmailWithPassword(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u := f.findEmail(email); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, name, gender, photo string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u.Name, u.Gender, u.Photo = name, gender, photo
	return f.public(u), nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u.Password = hash
	return f.public(u), nil
}

func (f *fakeUsers) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byID[id]
	return ok, nil
}

func hasEdge(edges []models.FollowEdge, id primitive.ObjectID) bool {
	for _, e := range edges {
		if e.User == id {
			return true
		}
	}
	return false
}

func withoutEdge(edges []models.FollowEdge, id primitive.ObjectID) []models.FollowEdge {
	out := edges[:0]
	for _, e := range edges {
		if e.User != id {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeUsers) Follow(_ context.Context, followerID, targetID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	follower, target := f.byID[followerID], f.byID[targetID]
	now := time.Now()
	if !hasEdge(follower.Following, targetID) {
		follower.Following = append(follower.Following, models.FollowEdge{User: targetID, CreatedAt: now})
	}
	if !hasEdge(target.Followers, followerID) {
		target.Followers = append(target.Followers, models.FollowEdge{User: followerID, CreatedAt: now})
	}
	return nil
}

func (f *fakeUsers) Unfollow(_ context.Context, followerID, targetID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	follower, target := f.byID[followerID], f.byID[targetID]
	follower.Following = withoutEdge(follower.Following, targetID)
	target.Followers = withoutEdge(target.Followers, followerID)
	return nil
}

func (f *fakeUsers) Following(_ context.Context, id primitive.ObjectID) (*models.FollowingView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	view := &models.FollowingView{ID: u.ID, Name: u.Name, Following: []models.FollowingEntry{}}
	for _, e := range u.Following {
		entry := models.FollowingEntry{CreatedAt: e.CreatedAt}
		if target, ok := f.byID[e.User]; ok {
			entry.User = target.Summary()
		}
		view.Following = append(view.Following, entry)
	}
	return view, nil
}

func (f *fakeUsers) summary(id primitive.ObjectID) *models.UserSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return u.Summary()
	}
	return nil
}

type fakePosts struct {
	mu       sync.Mutex
	posts    []*models.Post
	users    *fakeUsers
	comments *fakeComments
}

func (f *fakePosts) detail(p *models.Post, withComments bool) models.PostDetail {
	d := models.PostDetail{
		ID:        p.ID,
		Content:   p.Content,
		Image:     p.Image,
		CreatedAt: p.CreatedAt,
		Likes:     append([]primitive.ObjectID{}, p.Likes...),
		User:      f.users.summary(p.User),
	}
	if withComments && f.comments != nil {
		d.Comments = f.comments.forPost(p.ID)
	}
	return d
}

func (f *fakePosts) collect(match func(*models.Post) bool, ascending, withComments bool) []models.PostDetail {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.PostDetail{}
	for _, p := range f.posts {
		if match(p) {
			out = append(out, f.detail(p, withComments))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (f *fakePosts) List(_ context.Context, q store.PostQuery) ([]models.PostDetail, error) {
	return f.collect(func(p *models.Post) bool {
		return strings.Contains(p.Content, q.Keyword)
	}, q.Ascending, false), nil
}

func (f *fakePosts) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.PostDetail, error) {
	return f.collect(func(p *models.Post) bool { return p.User == userID }, false, true), nil
}

func (f *fakePosts) LikedBy(_ context.Context, userID primitive.ObjectID) ([]models.PostDetail, error) {
	return f.collect(func(p *models.Post) bool { return p.HasLike(userID) }, false, false), nil
}

func (f *fakePosts) find(id primitive.ObjectID) *models.Post {
	for _, p := range f.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (f *fakePosts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.find(id)
	if p == nil {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) Create(_ context.Context, p *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	cp := *p
	f.posts = append(f.posts, &cp)
	return nil
}

func (f *fakePosts) Like(_ context.Context, postID, userID primitive.ObjectID) (*models.Post, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.find(postID)
	if p == nil {
		return nil, false, store.ErrNotFound
	}
	added := !p.HasLike(userID)
	if added {
		p.Likes = append(p.Likes, userID)
	}
	cp := *p
	cp.Likes = append([]primitive.ObjectID{}, p.Likes...)
	return &cp, added, nil
}

func (f *fakePosts) Unlike(_ context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.find(postID)
	if p == nil {
		return nil, store.ErrNotFound
	}
	likes := []primitive.ObjectID{}
	for _, id := range p.Likes {
		if id != userID {
			likes = append(likes, id)
		}
	}
	p.Likes = likes
	cp := *p
	return &cp, nil
}

type fakeComments struct {
	mu       sync.Mutex
	comments []models.Comment
}

func (f *fakeComments) Create(_ context.Context, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	f.comments = append(f.comments, *c)
	return nil
}

func (f *fakeComments) forPost(id primitive.ObjectID) []models.Comment {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Comment
	for _, c := range f.comments {
		if c.Post == id {
			out = append(out, c)
		}
	}
	return out
}

type fakeSubscriptions struct {
	saved []models.PushSubscription
}

func (f *fakeSubscriptions) Save(_ context.Context, sub *models.PushSubscription) error {
	f.saved = append(f.saved, *sub)
	return nil
}

type sentEvent struct {
	userID string
	event  notify.Event
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentEvent
}

func (r *recordingNotifier) Notify(_ context.Context, userID string, ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentEvent{userID: userID, event: ev})
}

func (r *recordingNotifier) events() []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentEvent{}, r.sent...)
}

type fakeUploader struct {
	name string
	size int
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, filename string, data []byte) (string, error) {
	f.name, f.size = filename, len(data)
	if f.err != nil {
		return "", f.err
	}
	return "https://i.imgur.com/" + filename, nil
}
