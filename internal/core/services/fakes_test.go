package services

import (
	"context"
	"sort"
	"time"

	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/models"
	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/repositories"
	"github.com/Goldwhyit/almere-pickleball/internal/core/domain"

	"gorm.io/gorm"
)

// fakeStore is a shared in-memory backing store for the fake
// repositories so capacity counts span both booking tables, like the
// real database does.
type fakeStore struct {
	users        map[uint]*models.User
	members      map[uint]*models.Member
	lessons      map[uint]*models.TrialLesson
	regs         map[uint]*models.TrainingRegistration
	payments     map[uint]*models.Payment
	tokens       map[string]*models.RefreshToken
	nextUserID   uint
	nextMemberID uint
	nextLessonID uint
	nextRegID    uint
	nextPayID    uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[uint]*models.User{},
		members:  map[uint]*models.Member{},
		lessons:  map[uint]*models.TrialLesson{},
		regs:     map[uint]*models.TrainingRegistration{},
		payments: map[uint]*models.Payment{},
		tokens:   map[string]*models.RefreshToken{},
	}
}

// addMember seeds a user/member pair and returns the member
func (s *fakeStore) addMember(accountType string, membershipType *string) *models.Member {
	s.nextUserID++
	s.nextMemberID++

	user := &models.User{
		ID:          s.nextUserID,
		Email:       "member@example.com",
		AccountType: accountType,
		IsActive:    true,
	}
	member := &models.Member{
		ID:             s.nextMemberID,
		UserID:         user.ID,
		FirstName:      "Test",
		LastName:       "Member",
		MembershipType: membershipType,
		User:           user,
	}
	s.users[user.ID] = user
	s.members[member.ID] = member
	return member
}

// occupancy counts held spots for one session across both tables
func (s *fakeStore) occupancy(date, location string) int64 {
	var n int64
	for _, lesson := range s.lessons {
		if lesson.Status != models.LessonStatusScheduled && lesson.Status != models.LessonStatusCompleted {
			continue
		}
		if lesson.ScheduledDate.Format("2006-01-02") == date && lesson.Location == location {
			n++
		}
	}
	for _, reg := range s.regs {
		if reg.TrainingDate.Format("2006-01-02") == date && reg.Location == location {
			n++
		}
	}
	return n
}

// ============================================================
// Member repository
// ============================================================

type fakeMemberRepo struct{ s *fakeStore }

func (r *fakeMemberRepo) Create(ctx context.Context, member *models.Member) error {
	r.s.nextMemberID++
	member.ID = r.s.nextMemberID
	r.s.members[member.ID] = member
	return nil
}

func (r *fakeMemberRepo) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	member, ok := r.s.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return member, nil
}

func (r *fakeMemberRepo) GetByUserID(ctx context.Context, userID uint) (*models.Member, error) {
	for _, member := range r.s.members {
		if member.UserID == userID {
			return member, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMemberRepo) Update(ctx context.Context, member *models.Member) error {
	r.s.members[member.ID] = member
	return nil
}

func (r *fakeMemberRepo) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	out := r.sorted()
	return out, int64(len(out)), nil
}

func (r *fakeMemberRepo) ListByAccountTypes(ctx context.Context, accountTypes []string, offset, limit int) ([]*models.Member, int64, error) {
	var out []*models.Member
	for _, member := range r.sorted() {
		if member.User == nil {
			continue
		}
		for _, accountType := range accountTypes {
			if member.User.AccountType == accountType {
				out = append(out, member)
				break
			}
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeMemberRepo) ListWithMembership(ctx context.Context) ([]*models.Member, error) {
	var out []*models.Member
	for _, member := range r.sorted() {
		if member.User == nil || member.MembershipType == nil {
			continue
		}
		if member.User.AccountType == models.AccountMember || member.User.AccountType == models.AccountAdmin {
			out = append(out, member)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) ListExpiredTrials(ctx context.Context, now time.Time) ([]*models.Member, error) {
	var out []*models.Member
	for _, member := range r.sorted() {
		if member.User == nil || member.User.AccountType != models.AccountTrial {
			continue
		}
		if member.TrialEndDate != nil && member.TrialEndDate.Before(now) {
			out = append(out, member)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) UpdateWithUser(ctx context.Context, member *models.Member, user *models.User) error {
	r.s.members[member.ID] = member
	if user != nil {
		r.s.users[user.ID] = user
	}
	return nil
}

func (r *fakeMemberRepo) CreateWithUser(ctx context.Context, member *models.Member, user *models.User) error {
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	r.s.users[user.ID] = user

	r.s.nextMemberID++
	member.ID = r.s.nextMemberID
	member.UserID = user.ID
	member.User = user
	r.s.members[member.ID] = member
	return nil
}

func (r *fakeMemberRepo) sorted() []*models.Member {
	out := make([]*models.Member, 0, len(r.s.members))
	for _, member := range r.s.members {
		out = append(out, member)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ============================================================
// Trial lesson repository
// ============================================================

type fakeTrialRepo struct{ s *fakeStore }

func (r *fakeTrialRepo) Create(ctx context.Context, lesson *models.TrialLesson) error {
	r.s.nextLessonID++
	lesson.ID = r.s.nextLessonID
	r.s.lessons[lesson.ID] = lesson
	return nil
}

func (r *fakeTrialRepo) CreateBatch(ctx context.Context, lessons []*models.TrialLesson) error {
	for _, lesson := range lessons {
		if err := r.Create(ctx, lesson); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeTrialRepo) GetByID(ctx context.Context, id uint) (*models.TrialLesson, error) {
	lesson, ok := r.s.lessons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return lesson, nil
}

func (r *fakeTrialRepo) Update(ctx context.Context, lesson *models.TrialLesson) error {
	r.s.lessons[lesson.ID] = lesson
	return nil
}

func (r *fakeTrialRepo) ListByMember(ctx context.Context, memberID uint) ([]*models.TrialLesson, error) {
	var out []*models.TrialLesson
	for _, lesson := range r.sorted() {
		if lesson.MemberID == memberID {
			out = append(out, lesson)
		}
	}
	return out, nil
}

func (r *fakeTrialRepo) ListScheduledByMember(ctx context.Context, memberID uint) ([]*models.TrialLesson, error) {
	var out []*models.TrialLesson
	for _, lesson := range r.sorted() {
		if lesson.MemberID == memberID && lesson.Status == models.LessonStatusScheduled {
			out = append(out, lesson)
		}
	}
	return out, nil
}

func (r *fakeTrialRepo) ListByRange(ctx context.Context, from, to time.Time) ([]*models.TrialLesson, error) {
	var out []*models.TrialLesson
	for _, lesson := range r.sorted() {
		if !lesson.ScheduledDate.Before(from) && !lesson.ScheduledDate.After(to) {
			out = append(out, lesson)
		}
	}
	return out, nil
}

func (r *fakeTrialRepo) CountBySessions(ctx context.Context, from, to time.Time) (map[repositories.SessionKey]int64, error) {
	counts := map[repositories.SessionKey]int64{}
	for _, lesson := range r.s.lessons {
		if lesson.Status != models.LessonStatusScheduled && lesson.Status != models.LessonStatusCompleted {
			continue
		}
		if lesson.ScheduledDate.Before(from) || lesson.ScheduledDate.After(to) {
			continue
		}
		key := repositories.SessionKey{
			Date:     lesson.ScheduledDate.Format("2006-01-02"),
			Location: lesson.Location,
		}
		counts[key]++
	}
	return counts, nil
}

func (r *fakeTrialRepo) BookSession(ctx context.Context, lesson *models.TrialLesson, capacity int, apply func(m *models.Member) error) error {
	member, ok := r.s.members[lesson.MemberID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if r.s.occupancy(lesson.ScheduledDate.Format("2006-01-02"), lesson.Location) >= int64(capacity) {
		return domain.ErrTrainingFull
	}
	if err := apply(member); err != nil {
		return err
	}
	return r.Create(ctx, lesson)
}

func (r *fakeTrialRepo) CancelSession(ctx context.Context, lessonID, memberID uint, apply func(m *models.Member, l *models.TrialLesson) error) error {
	lesson, ok := r.s.lessons[lessonID]
	if !ok {
		return domain.ErrTrialNotFound
	}
	member, ok := r.s.members[memberID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if err := apply(member, lesson); err != nil {
		return err
	}
	lesson.Status = models.LessonStatusCancelled
	return nil
}

func (r *fakeTrialRepo) sorted() []*models.TrialLesson {
	out := make([]*models.TrialLesson, 0, len(r.s.lessons))
	for _, lesson := range r.s.lessons {
		out = append(out, lesson)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ============================================================
// Training registration repository
// ============================================================

type fakeRegRepo struct{ s *fakeStore }

func (r *fakeRegRepo) Register(ctx context.Context, reg *models.TrainingRegistration, capacity int, apply func(m *models.Member) error) error {
	member, ok := r.s.members[reg.MemberID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, existing := range r.s.regs {
		if existing.MemberID == reg.MemberID &&
			existing.TrainingDate.Format("2006-01-02") == reg.TrainingDate.Format("2006-01-02") &&
			existing.Location == reg.Location {
			return domain.ErrAlreadyRegistered
		}
	}
	if r.s.occupancy(reg.TrainingDate.Format("2006-01-02"), reg.Location) >= int64(capacity) {
		return domain.ErrTrainingFull
	}
	if err := apply(member); err != nil {
		return err
	}
	r.s.nextRegID++
	reg.ID = r.s.nextRegID
	r.s.regs[reg.ID] = reg
	return nil
}

func (r *fakeRegRepo) Unregister(ctx context.Context, registrationID, memberID uint, check func(reg *models.TrainingRegistration) error, apply func(m *models.Member) error) error {
	reg, ok := r.s.regs[registrationID]
	if !ok {
		return domain.ErrRegistrationGone
	}
	member, ok := r.s.members[memberID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if err := check(reg); err != nil {
		return err
	}
	if err := apply(member); err != nil {
		return err
	}
	delete(r.s.regs, registrationID)
	return nil
}

func (r *fakeRegRepo) GetByID(ctx context.Context, id uint) (*models.TrainingRegistration, error) {
	reg, ok := r.s.regs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return reg, nil
}

func (r *fakeRegRepo) CountBySessions(ctx context.Context, from, to time.Time) (map[repositories.SessionKey]int64, error) {
	counts := map[repositories.SessionKey]int64{}
	for _, reg := range r.s.regs {
		if reg.TrainingDate.Before(from) || reg.TrainingDate.After(to) {
			continue
		}
		key := repositories.SessionKey{
			Date:     reg.TrainingDate.Format("2006-01-02"),
			Location: reg.Location,
		}
		counts[key]++
	}
	return counts, nil
}

func (r *fakeRegRepo) ListByMember(ctx context.Context, memberID uint, from time.Time) ([]*models.TrainingRegistration, error) {
	var out []*models.TrainingRegistration
	for _, reg := range r.sorted() {
		if reg.MemberID == memberID && !reg.TrainingDate.Before(from) {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (r *fakeRegRepo) ListByRange(ctx context.Context, from, to time.Time) ([]*models.TrainingRegistration, error) {
	var out []*models.TrainingRegistration
	for _, reg := range r.sorted() {
		if !reg.TrainingDate.Before(from) && !reg.TrainingDate.After(to) {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (r *fakeRegRepo) sorted() []*models.TrainingRegistration {
	out := make([]*models.TrainingRegistration, 0, len(r.s.regs))
	for _, reg := range r.s.regs {
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ============================================================
// User, token and payment repositories
// ============================================================

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	r.s.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range r.s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.s.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uint) error {
	delete(r.s.users, id)
	for memberID, member := range r.s.members {
		if member.UserID == id {
			delete(r.s.members, memberID)
		}
	}
	return nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

type fakeTokenRepo struct{ s *fakeStore }

func (r *fakeTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	r.s.tokens[token.TokenHash] = token
	return nil
}

func (r *fakeTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	token, ok := r.s.tokens[tokenHash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return token, nil
}

func (r *fakeTokenRepo) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	if token, ok := r.s.tokens[tokenHash]; ok {
		now := time.Now()
		token.RevokedAt = &now
	}
	return nil
}

func (r *fakeTokenRepo) RevokeAllByUserID(ctx context.Context, userID uint) error {
	now := time.Now()
	for _, token := range r.s.tokens {
		if token.UserID == userID {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeTokenRepo) DeleteExpired(ctx context.Context) error {
	for hash, token := range r.s.tokens {
		if token.ExpiresAt.Before(time.Now()) {
			delete(r.s.tokens, hash)
		}
	}
	return nil
}

type fakePaymentRepo struct{ s *fakeStore }

func (r *fakePaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	r.s.nextPayID++
	payment.ID = r.s.nextPayID
	r.s.payments[payment.ID] = payment
	return nil
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	payment, ok := r.s.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return payment, nil
}

func (r *fakePaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	r.s.payments[payment.ID] = payment
	return nil
}

func (r *fakePaymentRepo) ListByMember(ctx context.Context, memberID uint, limit int) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, payment := range r.sorted() {
		if payment.MemberID == memberID {
			out = append(out, payment)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePaymentRepo) List(ctx context.Context, status string, offset, limit int) ([]*models.Payment, int64, error) {
	var out []*models.Payment
	for _, payment := range r.sorted() {
		if status == "" || payment.Status == status {
			out = append(out, payment)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePaymentRepo) sorted() []*models.Payment {
	out := make([]*models.Payment, 0, len(r.s.payments))
	for _, payment := range r.s.payments {
		out = append(out, payment)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
