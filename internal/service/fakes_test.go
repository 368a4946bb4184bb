package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/easyevent/internal/domain"
	"github.com/spec-kit/easyevent/internal/events"
	"github.com/spec-kit/easyevent/internal/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
	bans  []domain.BanRecord
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return fmt.Errorf("duplicate email")
		}
	}
	user.ID = r.nextID("user")
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		all = append(all, *user)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Role = role
	return nil
}

func (r *fakeUserRepo) Ban(_ context.Context, record *domain.BanRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[record.UserID]
	if !ok {
		return pgx.ErrNoRows
	}
	record.ID = r.nextID("ban")
	record.BannedAt = time.Now()
	user.Status = domain.UserStatusBanned
	user.BannedAt = &record.BannedAt
	user.BannedBy = &record.BannedBy
	user.BanReason = &record.BanReason
	r.bans = append(r.bans, *record)
	return nil
}

func (r *fakeUserRepo) Unban(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Status = domain.UserStatusActive
	user.BannedAt = nil
	user.BannedBy = nil
	user.BanReason = nil
	return nil
}

type fakeBanRepo struct {
	users *fakeUserRepo
}

func (r *fakeBanRepo) ListByUser(_ context.Context, userID string) ([]domain.BanRecord, error) {
	r.users.mu.Lock()
	defer r.users.mu.Unlock()
	records := make([]domain.BanRecord, 0)
	for _, rec := range r.users.bans {
		if rec.UserID == userID {
			records = append(records, rec)
		}
	}
	return records, nil
}

type fakeCategoryRepo struct {
	categories map[string]*domain.Category
}

func newFakeCategoryRepo(ids ...string) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{categories: make(map[string]*domain.Category)}
	for _, id := range ids {
		repo.categories[id] = &domain.Category{ID: id, Name: "Category " + id}
	}
	return repo
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	all := make([]domain.Category, 0, len(r.categories))
	for _, cat := range r.categories {
		all = append(all, *cat)
	}
	return all, nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	cat, ok := r.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *cat
	return &clone, nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	seq    int
	events map[string]*domain.Event
	// enrollments shares counter state so enroll/remove stay atomic in tests
	enrollments *fakeEnrollmentRepo
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*domain.Event)}
}

func (r *fakeEventRepo) Create(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	event.ID = fmt.Sprintf("event-%d", r.seq)
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeEventRepo) Update(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.events[event.ID]
	if !ok || existing.IsDeleted {
		return pgx.ErrNoRows
	}
	clone := *event
	clone.TicketsAvailable = event.MaxAttendees
	clone.UpdatedAt = time.Now()
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *event
	return &clone, nil
}

func (r *fakeEventRepo) UpdateStatus(_ context.Context, id string, to domain.EventStatus, from ...domain.EventStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok || event.IsDeleted {
		return pgx.ErrNoRows
	}
	for _, f := range from {
		if event.Status == f {
			event.Status = to
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeEventRepo) Approve(_ context.Context, id, approverID string, from ...domain.EventStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok || event.IsDeleted {
		return pgx.ErrNoRows
	}
	for _, f := range from {
		if event.Status == f {
			now := time.Now()
			event.Status = domain.EventStatusApproved
			event.ApprovedBy = &approverID
			event.ApprovedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeEventRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok || event.IsDeleted {
		return pgx.ErrNoRows
	}
	event.IsDeleted = true
	return nil
}

func (r *fakeEventRepo) ListPublic(_ context.Context, upcoming bool) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	today := time.Now().Truncate(24 * time.Hour)
	listed := make([]domain.Event, 0)
	for _, event := range r.events {
		if !event.PubliclyVisible() {
			continue
		}
		if upcoming && event.StartDate.Before(today) {
			continue
		}
		if !upcoming && !event.StartDate.Before(today) {
			continue
		}
		listed = append(listed, *event)
	}
	sort.Slice(listed, func(i, j int) bool {
		if upcoming {
			return listed[i].StartDate.Before(listed[j].StartDate)
		}
		return listed[j].StartDate.Before(listed[i].StartDate)
	})
	return listed, nil
}

func (r *fakeEventRepo) ListVisible(_ context.Context, limit, offset int) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listed := make([]domain.Event, 0)
	for _, event := range r.events {
		if event.PubliclyVisible() {
			listed = append(listed, *event)
		}
	}
	sort.Slice(listed, func(i, j int) bool { return listed[i].ID < listed[j].ID })
	if offset >= len(listed) {
		return nil, nil
	}
	end := offset + limit
	if end > len(listed) {
		end = len(listed)
	}
	return listed[offset:end], nil
}

func (r *fakeEventRepo) ListByOrganizer(_ context.Context, createdBy string) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listed := make([]domain.Event, 0)
	for _, event := range r.events {
		if event.CreatedBy == createdBy && !event.IsDeleted {
			listed = append(listed, *event)
		}
	}
	sort.Slice(listed, func(i, j int) bool { return listed[i].ID < listed[j].ID })
	return listed, nil
}

func (r *fakeEventRepo) CountActiveEnrollments(_ context.Context, eventID string) (int, error) {
	if r.enrollments == nil {
		return 0, nil
	}
	r.enrollments.mu.Lock()
	defer r.enrollments.mu.Unlock()
	count := 0
	for _, enrollment := range r.enrollments.rows {
		if enrollment.EventID == eventID && enrollment.Active() {
			count++
		}
	}
	return count, nil
}

type fakeEnrollmentRepo struct {
	mu     sync.Mutex
	seq    int
	rows   map[string]*domain.Enrollment
	events *fakeEventRepo
}

func newFakeEnrollmentRepo(eventRepo *fakeEventRepo) *fakeEnrollmentRepo {
	repo := &fakeEnrollmentRepo{rows: make(map[string]*domain.Enrollment), events: eventRepo}
	eventRepo.enrollments = repo
	return repo
}

// Enroll mirrors the conditional counter guard of the SQL implementation:
// under the event repo lock, the seat claim and the row insert are atomic.
func (r *fakeEnrollmentRepo) Enroll(_ context.Context, enrollment *domain.Enrollment) error {
	r.events.mu.Lock()
	defer r.events.mu.Unlock()
	event, ok := r.events.events[enrollment.EventID]
	if !ok || event.IsDeleted {
		return pgx.ErrNoRows
	}
	if event.AttendeeCount >= event.MaxAttendees {
		return repository.ErrEventFull
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.UserID == enrollment.UserID && existing.EventID == enrollment.EventID && existing.Active() {
			return repository.ErrAlreadyEnrolled
		}
	}

	event.AttendeeCount++
	if event.TicketsAvailable > 0 {
		event.TicketsAvailable--
	}
	r.seq++
	enrollment.ID = fmt.Sprintf("enrollment-%d", r.seq)
	enrollment.EnrolledAt = time.Now()
	enrollment.UpdatedAt = enrollment.EnrolledAt
	clone := *enrollment
	r.rows[enrollment.ID] = &clone
	return nil
}

func (r *fakeEnrollmentRepo) Remove(_ context.Context, enrollmentID, userID string) error {
	r.events.mu.Lock()
	defer r.events.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	enrollment, ok := r.rows[enrollmentID]
	if !ok || enrollment.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(r.rows, enrollmentID)
	if event, ok := r.events.events[enrollment.EventID]; ok {
		if event.AttendeeCount > 0 {
			event.AttendeeCount--
		}
		if event.TicketsAvailable < event.MaxAttendees {
			event.TicketsAvailable++
		}
	}
	return nil
}

func (r *fakeEnrollmentRepo) GetByID(_ context.Context, id string) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	enrollment, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *enrollment
	return &clone, nil
}

func (r *fakeEnrollmentRepo) GetActiveByUserAndEvent(_ context.Context, userID, eventID string) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, enrollment := range r.rows {
		if enrollment.UserID == userID && enrollment.EventID == eventID && enrollment.Active() {
			clone := *enrollment
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeEnrollmentRepo) UpdateStatus(_ context.Context, id string, status domain.EnrollmentStatus, payment domain.PaymentStatus) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	enrollment, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	enrollment.Status = status
	enrollment.PaymentStatus = payment
	enrollment.UpdatedAt = time.Now()
	clone := *enrollment
	return &clone, nil
}

func (r *fakeEnrollmentRepo) ListForUser(_ context.Context, userID string) ([]domain.EnrolledEvent, error) {
	r.events.mu.Lock()
	defer r.events.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]domain.EnrolledEvent, 0)
	for _, enrollment := range r.rows {
		if enrollment.UserID != userID || !enrollment.Active() {
			continue
		}
		item := domain.EnrolledEvent{Enrollment: *enrollment}
		if event, ok := r.events.events[enrollment.EventID]; ok {
			item.Event = *event
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Event.StartDate.Before(items[j].Event.StartDate)
	})
	return items, nil
}

type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.published))
	for _, event := range d.published {
		out = append(out, event.Type)
	}
	return out
}
