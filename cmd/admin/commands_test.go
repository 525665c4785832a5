package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appModels "github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/config"
	"github.com/yigit/swimdesk/internal/db"
	"github.com/yigit/swimdesk/internal/domain"
	"github.com/yigit/swimdesk/internal/pkg/auth"
	"github.com/yigit/swimdesk/internal/seed"
)

type recordingAdminStore struct {
	users []*appModels.User
}

func (s *recordingAdminStore) ExistsWithRole(context.Context, appModels.RoleType) (bool, error) {
	return false, nil
}

func (s *recordingAdminStore) UpsertAdmin(_ context.Context, user *appModels.User) error {
	user.ID = 42
	s.users = append(s.users, user)
	return nil
}

func testApp(out *bytes.Buffer, password string, store *recordingAdminStore) *app {
	return &app{
		out: out,
		readPassword: func(int) ([]byte, error) {
			return []byte(password), nil
		},
		openDatabase: func(context.Context, string) (*config.Config, *db.PostgresDB, error) {
			return &config.Config{}, &db.PostgresDB{}, nil
		},
		adminStore: func(*db.PostgresDB) seed.AdminStore {
			return store
		},
	}
}

func run(t *testing.T, a *app, args ...string) error {
	t.Helper()
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func TestUsageCommand_Human(t *testing.T) {
	var out bytes.Buffer
	err := run(t, testApp(&out, "", nil), "usage", "--base", "4", "--instructors", "2", "--ratio", "1:1", "--ratio", "3:1")
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Filled:")
	assert.Contains(t, out.String(), "Effective capacity: 5")
}

func TestUsageCommand_JSONMatchesDomain(t *testing.T) {
	var out bytes.Buffer
	err := run(t, testApp(&out, "", nil), "usage", "--base", "6", "--ratio", "1:1", "--ratio", "2:1", "--json")
	require.NoError(t, err)

	var got domain.CapacityResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, domain.ComputeUsageForRatios([]string{"1:1", "2:1"}, 1, 6), got)
}

func TestUsageCommand_RejectsNegativeBase(t *testing.T) {
	var out bytes.Buffer
	err := run(t, testApp(&out, "", nil), "usage", "--base", "-1")
	assert.Error(t, err)
}

func TestCreateAdminCommand(t *testing.T) {
	auth.BcryptCost = bcrypt.MinCost
	store := &recordingAdminStore{}
	var out bytes.Buffer

	err := run(t, testApp(&out, "changeme123", store), "create-admin", "--email", "Head@Pool.Test", "--first-name", "Head")
	require.NoError(t, err)

	require.Len(t, store.users, 1)
	assert.Equal(t, "head@pool.test", store.users[0].Email)
	assert.Equal(t, "Head", store.users[0].FirstName)
	assert.Equal(t, "Admin", store.users[0].LastName)
	assert.True(t, auth.CheckPassword(store.users[0].Password, "changeme123"))
	assert.Contains(t, out.String(), "Admin head@pool.test ready (id 42)")
}

func TestCreateAdminCommand_RequiresEmail(t *testing.T) {
	store := &recordingAdminStore{}
	err := run(t, testApp(&bytes.Buffer{}, "changeme123", store), "create-admin")
	assert.Error(t, err)
	assert.Empty(t, store.users)
}

func TestCreateAdminCommand_EmptyPassword(t *testing.T) {
	store := &recordingAdminStore{}
	err := run(t, testApp(&bytes.Buffer{}, "", store), "create-admin", "--email", "a@b.test")
	assert.Error(t, err)
	assert.Empty(t, store.users)
}

func TestCreateAdminCommand_PasswordReadError(t *testing.T) {
	a := testApp(&bytes.Buffer{}, "", &recordingAdminStore{})
	a.readPassword = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }
	err := run(t, a, "create-admin", "--email", "a@b.test")
	assert.ErrorContains(t, err, "not a terminal")
}
