package testutil

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/veland/larder/larder-backend/internal/domain"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[string]*domain.User
	ByID     map[uuid.UUID]*domain.User
	CreateFn func(auth0ID, email string, name, pictureURL *string) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// Create creates a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// UpdateName updates only the user's name by Auth0 ID
func (m *MockUserRepository) UpdateName(auth0ID string, name string) (*domain.User, error) {
	user, ok := m.Users[auth0ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Name = &name
	user.UpdatedAt = time.Now()
	return user, nil
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(auth0ID, email, name, pictureURL)
	}
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:         uuid.New(),
		Auth0ID:    auth0ID,
		Email:      email,
		Name:       name,
		PictureURL: pictureURL,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// SetActiveSpace updates the user's current space pointer
func (m *MockUserRepository) SetActiveSpace(id uuid.UUID, spaceID *uuid.UUID) error {
	user, ok := m.ByID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.ActiveSpaceID = spaceID
	user.UpdatedAt = time.Now()
	return nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockSpaceRepository is a mock implementation of domain.SpaceRepository.
// It holds the dependent repositories so ProvisionShared and the cascading
// Delete behave as the atomic units the postgres implementation provides.
type MockSpaceRepository struct {
	Spaces      map[uuid.UUID]*domain.Space
	Memberships *MockMembershipRepository
	Invites     *MockInviteRepository
	Activities  *MockActivityRepository
	Preferences *MockNotificationPreferenceRepository
	CreateFn    func(space *domain.Space) (*domain.Space, error)
	ProvisionFn func(p *domain.SharedSpaceProvision) (*domain.Space, error)
}

// NewMockSpaceRepository creates a new MockSpaceRepository backed by the
// given dependent repositories.
func NewMockSpaceRepository(
	memberships *MockMembershipRepository,
	invites *MockInviteRepository,
	activities *MockActivityRepository,
	preferences *MockNotificationPreferenceRepository,
) *MockSpaceRepository {
	return &MockSpaceRepository{
		Spaces:      make(map[uuid.UUID]*domain.Space),
		Memberships: memberships,
		Invites:     invites,
		Activities:  activities,
		Preferences: preferences,
	}
}

// GetByID retrieves a space by ID
func (m *MockSpaceRepository) GetByID(id uuid.UUID) (*domain.Space, error) {
	if space, ok := m.Spaces[id]; ok {
		return space, nil
	}
	return nil, domain.ErrSpaceNotFound
}

// Create creates a new space
func (m *MockSpaceRepository) Create(space *domain.Space) (*domain.Space, error) {
	if m.CreateFn != nil {
		return m.CreateFn(space)
	}
	if space.ID == uuid.Nil {
		space.ID = uuid.New()
	}
	if _, ok := m.Spaces[space.ID]; ok {
		return nil, domain.ErrAlreadyExists
	}
	space.CreatedAt = time.Now()
	space.UpdatedAt = space.CreatedAt
	m.Spaces[space.ID] = space
	return space, nil
}

// ProvisionShared creates the space with its owner membership, invite,
// preference and join activity all at once. All checks run before any
// write, so a failure leaves nothing behind.
func (m *MockSpaceRepository) ProvisionShared(p *domain.SharedSpaceProvision) (*domain.Space, error) {
	if m.ProvisionFn != nil {
		return m.ProvisionFn(p)
	}
	if p.Space.ID == uuid.Nil {
		p.Space.ID = uuid.New()
	}
	if _, ok := m.Spaces[p.Space.ID]; ok {
		return nil, domain.ErrAlreadyExists
	}
	if _, err := m.Memberships.GetActive(p.Owner.UserID, p.Space.ID); err == nil {
		return nil, domain.ErrAlreadyExists
	}

	p.Space.CreatedAt = time.Now()
	p.Space.UpdatedAt = p.Space.CreatedAt
	m.Spaces[p.Space.ID] = p.Space

	p.Owner.SpaceID = p.Space.ID
	if _, err := m.Memberships.Create(p.Owner); err != nil {
		delete(m.Spaces, p.Space.ID)
		return nil, err
	}
	p.Invite.SpaceID = p.Space.ID
	if _, err := m.Invites.Create(p.Invite); err != nil {
		delete(m.Spaces, p.Space.ID)
		return nil, err
	}
	p.Preference.SpaceID = p.Space.ID
	if _, err := m.Preferences.Set(p.Preference.UserID, p.Space.ID, p.Preference.Enabled); err != nil {
		delete(m.Spaces, p.Space.ID)
		return nil, err
	}
	p.Activity.SpaceID = p.Space.ID
	if _, err := m.Activities.Create(p.Activity); err != nil {
		delete(m.Spaces, p.Space.ID)
		return nil, err
	}
	return p.Space, nil
}

// Rename updates a space's name
func (m *MockSpaceRepository) Rename(id uuid.UUID, name string) (*domain.Space, error) {
	space, ok := m.Spaces[id]
	if !ok {
		return nil, domain.ErrSpaceNotFound
	}
	space.Name = name
	space.UpdatedAt = time.Now()
	return space, nil
}

// UpdateIcon updates a space's icon
func (m *MockSpaceRepository) UpdateIcon(id uuid.UUID, icon string) (*domain.Space, error) {
	space, ok := m.Spaces[id]
	if !ok {
		return nil, domain.ErrSpaceNotFound
	}
	space.Icon = icon
	space.UpdatedAt = time.Now()
	return space, nil
}

// Delete removes a space and cascades to every record scoped to it,
// mirroring the ON DELETE CASCADE foreign keys.
func (m *MockSpaceRepository) Delete(id uuid.UUID) error {
	delete(m.Spaces, id)
	m.Memberships.DeleteBySpace(id)
	m.Invites.DeleteBySpace(id)
	m.Activities.DeleteBySpace(id)
	m.Preferences.DeleteBySpace(id)
	return nil
}

// AddSpace adds a space to the mock repository (helper for tests)
func (m *MockSpaceRepository) AddSpace(space *domain.Space) {
	m.Spaces[space.ID] = space
}

// MockMembershipRepository is a mock implementation of domain.MembershipRepository.
// It guards its state with a mutex so ownership handoffs behave atomically,
// matching the postgres implementation.
type MockMembershipRepository struct {
	mu          sync.Mutex
	Memberships map[uuid.UUID]*domain.Membership
	LeaveFn     func(spaceID, leavingUserID, successorUserID uuid.UUID) error
}

// NewMockMembershipRepository creates a new MockMembershipRepository
func NewMockMembershipRepository() *MockMembershipRepository {
	return &MockMembershipRepository{
		Memberships: make(map[uuid.UUID]*domain.Membership),
	}
}

func (m *MockMembershipRepository) getActiveLocked(userID, spaceID uuid.UUID) *domain.Membership {
	for _, ms := range m.Memberships {
		if ms.UserID == userID && ms.SpaceID == spaceID && ms.Status == domain.MembershipActive {
			return ms
		}
	}
	return nil
}

// GetActive retrieves the active membership for a (user, space) pair
func (m *MockMembershipRepository) GetActive(userID, spaceID uuid.UUID) (*domain.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ms := m.getActiveLocked(userID, spaceID); ms != nil {
		return ms, nil
	}
	return nil, domain.ErrMembershipNotFound
}

// ListActiveBySpace returns active memberships ordered by joinedAt ascending
func (m *MockMembershipRepository) ListActiveBySpace(spaceID uuid.UUID) ([]*domain.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Membership
	for _, ms := range m.Memberships {
		if ms.SpaceID == spaceID && ms.Status == domain.MembershipActive {
			result = append(result, ms)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].JoinedAt.Before(result[j].JoinedAt)
	})
	return result, nil
}

// ListActiveByUser returns a user's active memberships
func (m *MockMembershipRepository) ListActiveByUser(userID uuid.UUID) ([]*domain.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Membership
	for _, ms := range m.Memberships {
		if ms.UserID == userID && ms.Status == domain.MembershipActive {
			result = append(result, ms)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].JoinedAt.Before(result[j].JoinedAt)
	})
	return result, nil
}

// Create creates a new membership, enforcing active uniqueness per (user, space)
func (m *MockMembershipRepository) Create(ms *domain.Membership) (*domain.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLocked(ms)
}

func (m *MockMembershipRepository) createLocked(ms *domain.Membership) (*domain.Membership, error) {
	if existing := m.getActiveLocked(ms.UserID, ms.SpaceID); existing != nil {
		return nil, domain.ErrAlreadyExists
	}
	if ms.ID == uuid.Nil {
		ms.ID = uuid.New()
	}
	if ms.JoinedAt.IsZero() {
		ms.JoinedAt = time.Now()
	}
	m.Memberships[ms.ID] = ms
	return ms, nil
}

// SetStatus transitions a membership to a new status
func (m *MockMembershipRepository) SetStatus(id uuid.UUID, status domain.MembershipStatus) (*domain.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.Memberships[id]
	if !ok {
		return nil, domain.ErrMembershipNotFound
	}
	ms.Status = status
	return ms, nil
}

// TransferOwnership atomically swaps the owner and target roles
func (m *MockMembershipRepository) TransferOwnership(spaceID, ownerUserID, targetUserID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner := m.getActiveLocked(ownerUserID, spaceID)
	target := m.getActiveLocked(targetUserID, spaceID)
	if owner == nil || target == nil {
		return domain.ErrMembershipNotFound
	}
	if owner.Role != domain.RoleOwner {
		return domain.ErrConflict
	}
	owner.Role = domain.RoleMember
	target.Role = domain.RoleOwner
	return nil
}

// LeaveWithSuccession atomically marks the owner as left and promotes the successor
func (m *MockMembershipRepository) LeaveWithSuccession(spaceID, leavingUserID, successorUserID uuid.UUID) error {
	if m.LeaveFn != nil {
		return m.LeaveFn(spaceID, leavingUserID, successorUserID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	leaving := m.getActiveLocked(leavingUserID, spaceID)
	successor := m.getActiveLocked(successorUserID, spaceID)
	if leaving == nil || successor == nil {
		return domain.ErrMembershipNotFound
	}
	if leaving.Role != domain.RoleOwner {
		return domain.ErrConflict
	}
	leaving.Status = domain.MembershipLeft
	successor.Role = domain.RoleOwner
	return nil
}

// DeleteBySpace removes all memberships scoped to a space
func (m *MockMembershipRepository) DeleteBySpace(spaceID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, ms := range m.Memberships {
		if ms.SpaceID == spaceID {
			delete(m.Memberships, id)
		}
	}
	return nil
}

// AddMembership adds a membership to the mock repository (helper for tests)
func (m *MockMembershipRepository) AddMembership(ms *domain.Membership) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ms.ID == uuid.Nil {
		ms.ID = uuid.New()
	}
	m.Memberships[ms.ID] = ms
}

// CountBySpace counts memberships for a space regardless of status (helper for tests)
func (m *MockMembershipRepository) CountBySpace(spaceID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, ms := range m.Memberships {
		if ms.SpaceID == spaceID {
			count++
		}
	}
	return count
}

// MockInviteRepository is a mock implementation of domain.InviteRepository.
// Redeem runs under a mutex and reproduces the conditional-update semantics
// of the postgres implementation, so concurrent redemption tests exercise
// the real last-use race.
type MockInviteRepository struct {
	mu          sync.Mutex
	Invites     map[uuid.UUID]*domain.Invite
	Memberships *MockMembershipRepository
}

// NewMockInviteRepository creates a new MockInviteRepository backed by the
// given membership repository for the redemption transaction.
func NewMockInviteRepository(memberships *MockMembershipRepository) *MockInviteRepository {
	return &MockInviteRepository{
		Invites:     make(map[uuid.UUID]*domain.Invite),
		Memberships: memberships,
	}
}

// GetByCode looks an invite up case-insensitively. Returns a copy so
// callers never observe an in-flight Redeem mutating the row.
func (m *MockInviteRepository) GetByCode(code string) (*domain.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.Invites {
		if strings.EqualFold(inv.Code, code) {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrInviteNotFound
}

// GetActiveBySpace returns a copy of the active invite for a space
func (m *MockInviteRepository) GetActiveBySpace(spaceID uuid.UUID) (*domain.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.Invites {
		if inv.SpaceID == spaceID && inv.Status == domain.InviteActive {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrInviteNotFound
}

// CodeInUse reports whether an active invite already uses the code
func (m *MockInviteRepository) CodeInUse(code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.Invites {
		if inv.Status == domain.InviteActive && strings.EqualFold(inv.Code, code) {
			return true, nil
		}
	}
	return false, nil
}

// Create creates a new invite
func (m *MockInviteRepository) Create(invite *domain.Invite) (*domain.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if invite.ID == uuid.Nil {
		invite.ID = uuid.New()
	}
	invite.CreatedAt = time.Now()
	invite.UpdatedAt = invite.CreatedAt
	m.Invites[invite.ID] = invite
	return invite, nil
}

// MarkExpired durably transitions an invite to expired
func (m *MockInviteRepository) MarkExpired(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.Invites[id]
	if !ok {
		return domain.ErrInviteNotFound
	}
	inv.Status = domain.InviteExpired
	inv.UpdatedAt = time.Now()
	return nil
}

// RevokeActiveBySpace revokes all active invites for a space
func (m *MockInviteRepository) RevokeActiveBySpace(spaceID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.Invites {
		if inv.SpaceID == spaceID && inv.Status == domain.InviteActive {
			inv.Status = domain.InviteRevoked
			inv.UpdatedAt = time.Now()
		}
	}
	return nil
}

// Redeem consumes one use and creates the membership as one atomic unit
func (m *MockInviteRepository) Redeem(inviteID uuid.UUID, ms *domain.Membership) (*domain.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.Invites[inviteID]
	if !ok {
		return nil, domain.ErrInviteNotFound
	}
	if inv.Status != domain.InviteActive || inv.UsedCount >= inv.MaxUses {
		return nil, domain.ErrInviteExhausted
	}
	created, err := m.Memberships.Create(ms)
	if err != nil {
		return nil, err
	}
	inv.UsedCount++
	inv.UpdatedAt = time.Now()
	return created, nil
}

// DeleteBySpace removes all invites scoped to a space
func (m *MockInviteRepository) DeleteBySpace(spaceID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, inv := range m.Invites {
		if inv.SpaceID == spaceID {
			delete(m.Invites, id)
		}
	}
	return nil
}

// AddInvite adds an invite to the mock repository (helper for tests)
func (m *MockInviteRepository) AddInvite(invite *domain.Invite) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if invite.ID == uuid.Nil {
		invite.ID = uuid.New()
	}
	m.Invites[invite.ID] = invite
}

// CountBySpace counts invites for a space regardless of status (helper for tests)
func (m *MockInviteRepository) CountBySpace(spaceID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, inv := range m.Invites {
		if inv.SpaceID == spaceID {
			count++
		}
	}
	return count
}

// MockActivityRepository is a mock implementation of domain.ActivityRepository.
// Insertion and eviction run under one mutex, mirroring the single-transaction
// postgres implementation.
type MockActivityRepository struct {
	mu         sync.Mutex
	Activities map[uuid.UUID][]*domain.Activity
	seq        int64
}

// NewMockActivityRepository creates a new MockActivityRepository
func NewMockActivityRepository() *MockActivityRepository {
	return &MockActivityRepository{
		Activities: make(map[uuid.UUID][]*domain.Activity),
	}
}

// Create appends an entry and evicts the oldest beyond the per-space cap
func (m *MockActivityRepository) Create(activity *domain.Activity) (*domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	// Monotonic timestamps keep insertion order stable even when entries
	// land within the same wall-clock tick.
	m.seq++
	activity.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Nanosecond)
	entries := append(m.Activities[activity.SpaceID], activity)
	if len(entries) > domain.MaxActivitiesPerSpace {
		entries = entries[len(entries)-domain.MaxActivitiesPerSpace:]
	}
	m.Activities[activity.SpaceID] = entries
	return activity, nil
}

// ListBySpace returns entries newest-first
func (m *MockActivityRepository) ListBySpace(spaceID uuid.UUID, limit int) ([]*domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.Activities[spaceID]
	result := make([]*domain.Activity, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		result = append(result, entries[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// DeleteBySpace removes all activity scoped to a space
func (m *MockActivityRepository) DeleteBySpace(spaceID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Activities, spaceID)
	return nil
}

// CountBySpace counts retained entries for a space (helper for tests)
func (m *MockActivityRepository) CountBySpace(spaceID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Activities[spaceID])
}

// MockNotificationPreferenceRepository is a mock implementation of
// domain.NotificationPreferenceRepository
type MockNotificationPreferenceRepository struct {
	Preferences map[string]*domain.NotificationPreference
}

// NewMockNotificationPreferenceRepository creates a new MockNotificationPreferenceRepository
func NewMockNotificationPreferenceRepository() *MockNotificationPreferenceRepository {
	return &MockNotificationPreferenceRepository{
		Preferences: make(map[string]*domain.NotificationPreference),
	}
}

func prefKey(userID, spaceID uuid.UUID) string {
	return userID.String() + ":" + spaceID.String()
}

// Get returns the stored preference or ErrNotFound when unset
func (m *MockNotificationPreferenceRepository) Get(userID, spaceID uuid.UUID) (*domain.NotificationPreference, error) {
	if pref, ok := m.Preferences[prefKey(userID, spaceID)]; ok {
		return pref, nil
	}
	return nil, domain.ErrNotFound
}

// Set upserts a preference
func (m *MockNotificationPreferenceRepository) Set(userID, spaceID uuid.UUID, enabled bool) (*domain.NotificationPreference, error) {
	pref := &domain.NotificationPreference{
		UserID:    userID,
		SpaceID:   spaceID,
		Enabled:   enabled,
		UpdatedAt: time.Now(),
	}
	m.Preferences[prefKey(userID, spaceID)] = pref
	return pref, nil
}

// DeleteBySpace removes all preferences scoped to a space
func (m *MockNotificationPreferenceRepository) DeleteBySpace(spaceID uuid.UUID) error {
	for key, pref := range m.Preferences {
		if pref.SpaceID == spaceID {
			delete(m.Preferences, key)
		}
	}
	return nil
}
