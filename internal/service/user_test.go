package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"huddleup/internal/model"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// In unit tests, we don't want to hit a real database. Instead, we create a
// "mock" that implements the same interface but returns controlled responses.
//
// This is the KEY insight: because the services depend on repository
// INTERFACES (not concrete implementations), we can swap in mocks.

type mockUserRepository struct {
	// These functions let each test define custom behavior
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	listOthersFn       func(ctx context.Context, excludeID int64, limit int) ([]model.UserSummary, error)
	updateAvatarFn     func(ctx context.Context, userID int64, avatarURL, avatarKey string) error

	// Track calls for assertions
	createCalls []createCall
}

type createCall struct {
	User *model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, createCall{User: user})
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) ListOthers(ctx context.Context, excludeID int64, limit int) ([]model.UserSummary, error) {
	if m.listOthersFn != nil {
		return m.listOthersFn(ctx, excludeID, limit)
	}
	return nil, nil
}

func (m *mockUserRepository) UpdateAvatar(ctx context.Context, userID int64, avatarURL, avatarKey string) error {
	if m.updateAvatarFn != nil {
		return m.updateAvatarFn(ctx, userID, avatarURL, avatarKey)
	}
	return nil
}

// =============================================================================
// REGISTER TESTS
// =============================================================================

func TestUserService_Register_Success(t *testing.T) {
	// ARRANGE: Set up test data and mocks
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return false, nil // Username doesn't exist
		},
		createFn: func(ctx context.Context, user *model.User) error {
			// Simulate database setting ID and timestamps
			user.ID = 1
			user.CreatedAt = time.Now()
			user.UpdatedAt = time.Now()
			return nil
		},
	}
	svc := NewUserService(mockRepo, &mockFriendRepository{})

	req := &model.RegisterRequest{
		Username:    "testuser",
		Password:    "securepassword123",
		DisplayName: "Test User",
	}

	// ACT: Call the method we're testing
	user, err := svc.Register(context.Background(), req)

	// ASSERT: Check the results
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if user == nil {
		t.Fatal("expected user, got nil")
	}

	if user.Username != req.Username {
		t.Errorf("username = %q, want %q", user.Username, req.Username)
	}

	if user.DisplayName == nil || *user.DisplayName != req.DisplayName {
		t.Errorf("display_name = %v, want %q", user.DisplayName, req.DisplayName)
	}

	// Verify password was hashed (not stored in plain text!)
	if user.PasswordHashed == req.Password {
		t.Error("password should be hashed, not stored in plain text")
	}

	// Verify the hash is valid bcrypt
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password))
	if err != nil {
		t.Error("password hash should be valid bcrypt hash")
	}

	// Verify Create was called exactly once
	if len(mockRepo.createCalls) != 1 {
		t.Errorf("Create called %d times, want 1", len(mockRepo.createCalls))
	}
}

func TestUserService_Register_UsernameExists(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return true, nil // Username already exists
		},
	}
	svc := NewUserService(mockRepo, &mockFriendRepository{})

	req := &model.RegisterRequest{
		Username: "existinguser",
		Password: "password123",
	}

	user, err := svc.Register(context.Background(), req)

	// Should return ErrUsernameExists
	if !errors.Is(err, model.ErrUsernameExists) {
		t.Errorf("error = %v, want %v", err, model.ErrUsernameExists)
	}

	if user != nil {
		t.Error("user should be nil when registration fails")
	}

	// Verify Create was NOT called
	if len(mockRepo.createCalls) != 0 {
		t.Error("Create should not be called when username exists")
	}
}

func TestUserService_Register_CreateError(t *testing.T) {
	dbError := errors.New("insert failed")
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			return dbError
		},
	}
	svc := NewUserService(mockRepo, &mockFriendRepository{})

	req := &model.RegisterRequest{
		Username: "testuser",
		Password: "password123",
	}

	_, err := svc.Register(context.Background(), req)

	if !errors.Is(err, dbError) {
		t.Errorf("error should wrap create error")
	}
}

func TestUserService_Register_WithoutDisplayName(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 1
			return nil
		},
	}
	svc := NewUserService(mockRepo, &mockFriendRepository{})

	req := &model.RegisterRequest{
		Username: "testuser",
		Password: "password123",
		// DisplayName intentionally omitted
	}

	user, err := svc.Register(context.Background(), req)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.DisplayName != nil {
		t.Errorf("display_name should be nil when not provided, got %v", user.DisplayName)
	}
}

// =============================================================================
// LOGIN TESTS - Table-Driven (THE Go idiom)
// =============================================================================

func TestUserService_Login(t *testing.T) {
	validPassword := "correctpassword"
	validHash, _ := bcrypt.GenerateFromPassword([]byte(validPassword), bcrypt.MinCost)

	testUser := &model.User{
		ID:             1,
		Username:       "testuser",
		PasswordHashed: string(validHash),
	}

	tests := []struct {
		name          string
		username      string
		password      string
		mockGetByUser func(ctx context.Context, username string) (*model.User, error)
		wantErr       error
		wantUser      bool
	}{
		{
			name:     "successful login",
			username: "testuser",
			password: validPassword,
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return testUser, nil
			},
			wantErr:  nil,
			wantUser: true,
		},
		{
			name:     "user not found",
			username: "nonexistent",
			password: "anypassword",
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return nil, model.ErrUserNotFound
			},
			wantErr:  model.ErrInvalidCredentials, // Don't reveal user doesn't exist
			wantUser: false,
		},
		{
			name:     "wrong password",
			username: "testuser",
			password: "wrongpassword",
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return testUser, nil
			},
			wantErr:  model.ErrInvalidCredentials,
			wantUser: false,
		},
		{
			name:     "database error",
			username: "testuser",
			password: validPassword,
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return nil, errors.New("database error")
			},
			wantErr:  model.ErrInvalidCredentials, // Don't reveal internal errors
			wantUser: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockUserRepository{
				getByUsernameFn: tt.mockGetByUser,
			}
			svc := NewUserService(mockRepo, &mockFriendRepository{})

			req := &model.LoginRequest{
				Username: tt.username,
				Password: tt.password,
			}

			user, err := svc.Login(context.Background(), req)

			// Check error
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			// Check user
			if tt.wantUser && user == nil {
				t.Error("expected user, got nil")
			}
			if !tt.wantUser && user != nil {
				t.Error("expected nil user")
			}
		})
	}
}

// =============================================================================
// LISTUSERS TESTS
// =============================================================================

func TestUserService_ListUsers_FriendStatusEnrichment(t *testing.T) {
	mockRepo := &mockUserRepository{
		listOthersFn: func(ctx context.Context, excludeID int64, limit int) ([]model.UserSummary, error) {
			return []model.UserSummary{
				{ID: 2, Username: "alice"},
				{ID: 3, Username: "bob"},
				{ID: 4, Username: "carol"},
				{ID: 5, Username: "dave"},
			}, nil
		},
	}
	friendRepo := &mockFriendRepository{
		statusesForFn: func(ctx context.Context, selfID int64, otherIDs []int64) (map[int64]string, error) {
			return map[int64]string{
				2: model.FriendStatusFriend,
				3: model.FriendStatusIncoming,
				4: model.FriendStatusPending,
				5: model.FriendStatusNone,
			}, nil
		},
	}
	svc := NewUserService(mockRepo, friendRepo)

	users, err := svc.ListUsers(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[int64]string{
		2: model.FriendStatusFriend,
		3: model.FriendStatusIncoming,
		4: model.FriendStatusPending,
		5: model.FriendStatusNone,
	}
	for _, u := range users {
		if u.FriendStatus != want[u.ID] {
			t.Errorf("user %d friend_status = %q, want %q", u.ID, u.FriendStatus, want[u.ID])
		}
	}
}

func TestUserService_ListUsers_StatusLookupFailureDegrades(t *testing.T) {
	mockRepo := &mockUserRepository{
		listOthersFn: func(ctx context.Context, excludeID int64, limit int) ([]model.UserSummary, error) {
			return []model.UserSummary{{ID: 2, Username: "alice"}}, nil
		},
	}
	friendRepo := &mockFriendRepository{
		statusesForFn: func(ctx context.Context, selfID int64, otherIDs []int64) (map[int64]string, error) {
			return nil, errors.New("friendships table unavailable")
		},
	}
	svc := NewUserService(mockRepo, friendRepo)

	users, err := svc.ListUsers(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("listing should not fail when status lookup fails, got: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].FriendStatus != "" {
		t.Errorf("friend_status should be empty on lookup failure, got %q", users[0].FriendStatus)
	}
}
