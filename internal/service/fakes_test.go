package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/edia-health/edia-backend/internal/models"
	"github.com/edia-health/edia-backend/internal/repository"
)

// memDB backs every fake store so that deletes and role assignment are
// visible across them, like the real tables.
type memDB struct {
	mu       sync.Mutex
	nextID   uint
	users    map[uint]*models.User
	profiles map[uint]*models.Profile // keyed by user id
	groups   map[string]*models.Group
	records  map[uint]*models.DailyRecord
	revoked  map[string]time.Duration

	createErr   error
	addGroupErr error
}

func newMemDB() *memDB {
	return &memDB{
		users:    make(map[uint]*models.User),
		profiles: make(map[uint]*models.Profile),
		groups:   make(map[string]*models.Group),
		records:  make(map[uint]*models.DailyRecord),
		revoked:  make(map[string]time.Duration),
	}
}

func (m *memDB) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memDB) addGroup(name string, codenames ...string) *models.Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := &models.Group{ID: m.id(), Name: name}
	for _, c := range codenames {
		g.Permissions = append(g.Permissions, models.Permission{ID: m.id(), Codename: c})
	}
	m.groups[name] = g
	return g
}

func (m *memDB) groupByID(id uint) *models.Group {
	for _, g := range m.groups {
		if g.ID == id {
			cp := *g
			return &cp
		}
	}
	return nil
}

func (m *memDB) profileCopy(userID uint) *models.Profile {
	p, ok := m.profiles[userID]
	if !ok {
		return nil
	}
	cp := *p
	cp.Role = nil
	if p.RoleID != nil {
		cp.Role = m.groupByID(*p.RoleID)
	}
	return &cp
}

func (m *memDB) userCopy(u *models.User) *models.User {
	cp := *u
	cp.Groups = append([]models.Group(nil), u.Groups...)
	cp.Profile = m.profileCopy(u.ID)
	return &cp
}

type fakeUsers struct{ db *memDB }

func (f fakeUsers) CreateWithProfile(_ context.Context, user *models.User, profile *models.Profile) error {
	m := f.db
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrUsernameTaken
		}
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrEmailTaken
		}
	}
	user.ID = m.id()
	stored := *user
	m.users[user.ID] = &stored

	profile.ID = m.id()
	profile.UserID = user.ID
	storedProfile := *profile
	m.profiles[user.ID] = &storedProfile
	user.Profile = profile
	return nil
}

func (f fakeUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return f.db.userCopy(u), nil
}

func (f fakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Username == username {
			return f.db.userCopy(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f fakeUsers) GetWithPermissions(ctx context.Context, id uint) (*models.User, error) {
	return f.GetByID(ctx, id)
}

func (f fakeUsers) AddGroup(_ context.Context, user *models.User, group *models.Group) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.addGroupErr != nil {
		return f.db.addGroupErr
	}
	u, ok := f.db.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Groups = append(u.Groups, *group)
	return nil
}

func (f fakeUsers) Delete(_ context.Context, id uint) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	for rid, r := range f.db.records {
		if r.UserID == id {
			delete(f.db.records, rid)
		}
	}
	delete(f.db.profiles, id)
	delete(f.db.users, id)
	return nil
}

type fakeGroups struct{ db *memDB }

func (f fakeGroups) GetByName(_ context.Context, name string) (*models.Group, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	g, ok := f.db.groups[name]
	if !ok {
		return nil, repository.ErrGroupNotFound
	}
	cp := *g
	return &cp, nil
}

type fakeProfiles struct{ db *memDB }

func (f fakeProfiles) GetByUserID(_ context.Context, userID uint) (*models.Profile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p := f.db.profileCopy(userID)
	if p == nil {
		return nil, repository.ErrProfileNotFound
	}
	return p, nil
}

func (f fakeProfiles) SetRole(_ context.Context, userID, groupID uint) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.profiles[userID]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.RoleID = &groupID
	return nil
}

func (f fakeProfiles) Update(_ context.Context, profile *models.Profile) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	stored := *profile
	stored.Role = nil
	f.db.profiles[profile.UserID] = &stored
	return nil
}

type fakeRecords struct{ db *memDB }

func copyRecord(r *models.DailyRecord) *models.DailyRecord {
	cp := *r
	cp.Activities = append([]models.PhysicalActivity(nil), r.Activities...)
	return &cp
}

func (f fakeRecords) clash(userID uint, date time.Time, excludeID uint) bool {
	for _, r := range f.db.records {
		if r.UserID == userID && r.Date.Equal(date) && r.ID != excludeID {
			return true
		}
	}
	return false
}

func (f fakeRecords) Create(_ context.Context, record *models.DailyRecord) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.clash(record.UserID, record.Date, 0) {
		return repository.ErrDuplicateDate
	}
	record.ID = f.db.id()
	for i := range record.Activities {
		record.Activities[i].ID = f.db.id()
		record.Activities[i].DailyRecordID = record.ID
	}
	f.db.records[record.ID] = copyRecord(record)
	return nil
}

func (f fakeRecords) ExistsForDate(_ context.Context, userID uint, date time.Time, excludeID uint) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.clash(userID, date, excludeID), nil
}

func (f fakeRecords) GetByIDAndUserID(_ context.Context, id, userID uint) (*models.DailyRecord, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.records[id]
	if !ok || r.UserID != userID {
		return nil, repository.ErrDailyRecordNotFound
	}
	return copyRecord(r), nil
}

func (f fakeRecords) ListByUserIDPaginated(_ context.Context, userID uint, filter repository.DailyRecordFilter, page, pageSize int) ([]models.DailyRecord, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var matched []models.DailyRecord
	for _, r := range f.db.records {
		if r.UserID != userID {
			continue
		}
		if filter.From != nil && r.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && r.Date.After(*filter.To) {
			continue
		}
		matched = append(matched, *copyRecord(r))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })

	total := int64(len(matched))
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return []models.DailyRecord{}, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f fakeRecords) Replace(_ context.Context, record *models.DailyRecord) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.clash(record.UserID, record.Date, record.ID) {
		return repository.ErrDuplicateDate
	}
	for i := range record.Activities {
		record.Activities[i].ID = f.db.id()
		record.Activities[i].DailyRecordID = record.ID
	}
	f.db.records[record.ID] = copyRecord(record)
	return nil
}

func (f fakeRecords) Delete(_ context.Context, id, userID uint) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.records[id]
	if !ok || r.UserID != userID {
		return repository.ErrDailyRecordNotFound
	}
	delete(f.db.records, id)
	return nil
}

type fakeRevoker struct{ db *memDB }

func (f fakeRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if ttl <= 0 {
		return nil
	}
	f.db.revoked[jti] = ttl
	return nil
}

func (f fakeRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	_, ok := f.db.revoked[jti]
	return ok, nil
}
