// Package mock provides in-memory repositories for tests. Every method can
// be made to fail with FailOn, which is how the store-failure paths of the
// services are exercised.
package mock

import (
	"sort"
	"sync"

	"quillpost/app/models"
	"quillpost/app/repositories"
)

// failures holds injected errors keyed by method name.
type failures struct {
	mutex sync.Mutex
	errs  map[string]error
}

// FailOn makes every later call to method return err. A nil err clears it.
func (f *failures) FailOn(method string, err error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.errs == nil {
		f.errs = make(map[string]error)
	}
	if err == nil {
		delete(f.errs, method)
		return
	}
	f.errs[method] = err
}

func (f *failures) check(method string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.errs[method]
}

type PostRepository struct {
	failures
	posts  map[int]*models.Post
	nextID int
	mutex  sync.RWMutex
}

type CommentRepository struct {
	failures
	comments map[int]*models.Comment
	nextID   int
	mutex    sync.RWMutex
}

type UserRepository struct {
	failures
	users  map[int]*models.User
	nextID int
	mutex  sync.RWMutex
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int]*models.Post),
		nextID: 1,
	}
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{
		comments: make(map[int]*models.Comment),
		nextID:   1,
	}
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  make(map[int]*models.User),
		nextID: 1,
	}
}

// Stored values are copied in and out so callers cannot mutate the "database".

func clonePost(p *models.Post) *models.Post {
	c := *p
	return &c
}

func cloneComment(c *models.Comment) *models.Comment {
	cp := *c
	cp.Replies = append([]models.Reply(nil), c.Replies...)
	return &cp
}

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

// PostRepository implementation
func (m *PostRepository) Create(post *models.Post) error {
	if err := m.check("Create"); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post.ID = m.nextID
	m.nextID++
	m.posts[post.ID] = clonePost(post)
	return nil
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	if err := m.check("GetByID"); err != nil {
		return nil, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return clonePost(post), nil
}

// Put stores post exactly as given, keeping its ID. Tests use it to seed
// timestamps and counters that the repository API never sets directly.
func (m *PostRepository) Put(post *models.Post) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.posts[post.ID] = clonePost(post)
	if post.ID >= m.nextID {
		m.nextID = post.ID + 1
	}
}

func (m *PostRepository) Update(post *models.Post) error {
	if err := m.check("Update"); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	existing, exists := m.posts[post.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	post.AuthorID = existing.AuthorID
	post.Views = existing.Views
	post.Likes = existing.Likes
	post.CommentsCount = existing.CommentsCount
	post.CreatedAt = existing.CreatedAt
	m.posts[post.ID] = clonePost(post)
	return nil
}

func (m *PostRepository) Delete(id int) error {
	if err := m.check("Delete"); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *PostRepository) List() ([]*models.Post, error) {
	if err := m.check("List"); err != nil {
		return nil, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var posts []*models.Post
	for id := 1; id < m.nextID; id++ {
		if post, exists := m.posts[id]; exists {
			posts = append(posts, clonePost(post))
		}
	}
	return posts, nil
}

func (m *PostRepository) IncrementViews(id int) (int, error) {
	return m.mutate("IncrementViews", id, func(p *models.Post) int {
		p.Views++
		return p.Views
	})
}

func (m *PostRepository) IncrementLikes(id int) (int, error) {
	return m.mutate("IncrementLikes", id, func(p *models.Post) int {
		p.Likes++
		return p.Likes
	})
}

func (m *PostRepository) IncrementCommentsCount(id int) (int, error) {
	return m.mutate("IncrementCommentsCount", id, func(p *models.Post) int {
		p.CommentsCount++
		return p.CommentsCount
	})
}

func (m *PostRepository) SetCommentsCount(id int, count int) error {
	_, err := m.mutate("SetCommentsCount", id, func(p *models.Post) int {
		p.CommentsCount = count
		return count
	})
	return err
}

func (m *PostRepository) mutate(method string, id int, fn func(*models.Post) int) (int, error) {
	if err := m.check(method); err != nil {
		return 0, err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post, exists := m.posts[id]
	if !exists {
		return 0, repositories.ErrNotFound
	}
	return fn(post), nil
}

// CommentRepository implementation
func (m *CommentRepository) Create(comment *models.Comment) error {
	if err := m.check("Create"); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	comment.ID = m.nextID
	m.nextID++
	m.comments[comment.ID] = cloneComment(comment)
	return nil
}

func (m *CommentRepository) GetByID(id int) (*models.Comment, error) {
	if err := m.check("GetByID"); err != nil {
		return nil, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return cloneComment(comment), nil
}

func (m *CommentRepository) List() ([]*models.Comment, error) {
	return m.filter("List", func(*models.Comment) bool { return true })
}

func (m *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	return m.filter("ListByPost", func(c *models.Comment) bool { return c.PostID == postID })
}

func (m *CommentRepository) CountApproved(postID int) (int, error) {
	comments, err := m.filter("CountApproved", func(c *models.Comment) bool {
		return c.PostID == postID && c.IsApproved()
	})
	return len(comments), err
}

func (m *CommentRepository) filter(method string, keep func(*models.Comment) bool) ([]*models.Comment, error) {
	if err := m.check(method); err != nil {
		return nil, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var comments []*models.Comment
	for _, comment := range m.comments {
		if keep(comment) {
			comments = append(comments, cloneComment(comment))
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (m *CommentRepository) UpdateStatus(id int, status models.CommentStatus) (*models.Comment, error) {
	return m.mutate("UpdateStatus", id, func(c *models.Comment) error {
		return c.SetStatus(status)
	})
}

func (m *CommentRepository) AppendReply(id int, reply models.Reply) (*models.Comment, error) {
	return m.mutate("AppendReply", id, func(c *models.Comment) error {
		c.AddReply(reply)
		return nil
	})
}

func (m *CommentRepository) IncrementLikes(id int) (int, error) {
	comment, err := m.mutate("IncrementLikes", id, func(c *models.Comment) error {
		c.Likes++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return comment.Likes, nil
}

func (m *CommentRepository) mutate(method string, id int, fn func(*models.Comment) error) (*models.Comment, error) {
	if err := m.check(method); err != nil {
		return nil, err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	if err := fn(comment); err != nil {
		return nil, err
	}
	return cloneComment(comment), nil
}

func (m *CommentRepository) Delete(id int) (*models.Comment, error) {
	if err := m.check("Delete"); err != nil {
		return nil, err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	delete(m.comments, id)
	return comment, nil
}

// UserRepository implementation
func (m *UserRepository) Create(user *models.User) error {
	if err := m.check("Create"); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = cloneUser(user)
	return nil
}

func (m *UserRepository) GetByID(id int) (*models.User, error) {
	if err := m.check("GetByID"); err != nil {
		return nil, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return cloneUser(user), nil
}

func (m *UserRepository) GetByEmail(email string) (*models.User, error) {
	if err := m.check("GetByEmail"); err != nil {
		return nil, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, repositories.ErrNotFound
}

var (
	_ repositories.PostRepository    = (*PostRepository)(nil)
	_ repositories.CommentRepository = (*CommentRepository)(nil)
	_ repositories.UserRepository    = (*UserRepository)(nil)
)
