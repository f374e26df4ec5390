// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// userStore is the [store.DB]-backed implementation of [UserStore].
//
// The user row and its child rows (user_claims, user_logins, user_roles)
// are written in the same transaction, so a user is never observed with a
// partially persisted aggregate.
type userStore struct {
	db     *store.DB
	tables *tables
	ids    utils.IDGenerator
}

// NewUserStore constructs a [UserStore] on top of db.
func NewUserStore(db *store.DB, log *logger.Logger) UserStore {
	log.Debug().Msg("creating user store")
	return &userStore{
		db:     db,
		tables: newTables(db),
		ids:    utils.NewUUIDGenerator(),
	}
}

// CreateUser persists a new user with empty claim, login and role
// collections. An empty ID or SecurityStamp is assigned before the insert.
//
// Error handling:
//   - blank UserName → [ErrInvalidUser].
//   - username taken (ignoring case) → [ErrDuplicateUsername].
//   - non-empty email taken (ignoring case) → [ErrDuplicateEmail].
//   - a unique violation raised by a concurrent insert → [ErrPersistenceFailure]
//     that also matches [ErrDuplicateUsername].
func (s *userStore) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil || strings.TrimSpace(user.UserName) == "" {
		return ErrInvalidUser
	}

	row := toUserRow(user)
	if row.ID == "" {
		row.ID = s.ids.Generate()
	}
	if row.SecurityStamp == "" {
		row.SecurityStamp = utils.NewSecurityStamp()
	}

	err := withinUnitOfWork(ctx, s.db, "*userStore.CreateUser", func(ctx context.Context) error {
		if err := s.checkUnique(ctx, "", row.UserName, row.Email); err != nil {
			return err
		}

		if err := s.tables.users.Save(ctx, &row); err != nil {
			if errors.Is(err, store.ErrUniqueViolation) {
				return fmt.Errorf("%w: %w: %w", ErrPersistenceFailure, ErrDuplicateUsername, err)
			}
			return err
		}

		return nil
	})
	if err != nil {
		return err
	}

	user.ID = row.ID
	user.SecurityStamp = row.SecurityStamp
	user.Claims = []models.Claim{}
	user.Logins = []models.Login{}
	user.Roles = []string{}

	return nil
}

// UpdateUser persists every scalar field of user and replaces the stored
// claims, logins and role memberships with the ones held in memory.
//
// All checks run before the first write:
//   - user no longer exists → [ErrNotFound].
//   - rename onto another user's username or email → [ErrDuplicateUsername],
//     [ErrDuplicateEmail].
//   - a held role name does not exist → [ErrRoleNotFound].
//   - a held login belongs to another user → [ErrLoginAlreadyAssociated].
//
// On success the role names held by user are replaced by their stored
// spelling.
func (s *userStore) UpdateUser(ctx context.Context, user *models.User) error {
	if user == nil || strings.TrimSpace(user.UserName) == "" {
		return ErrInvalidUser
	}

	claims := distinctClaims(user.Claims)
	logins := distinctLogins(user.Logins)

	var roles []roleRow
	err := withinUnitOfWork(ctx, s.db, "*userStore.UpdateUser", func(ctx context.Context) error {
		if err := s.ensureUser(ctx, user.ID); err != nil {
			return err
		}
		if err := s.checkUnique(ctx, user.ID, user.UserName, user.Email); err != nil {
			return err
		}

		var err error
		if roles, err = s.resolveRoles(ctx, user.Roles); err != nil {
			return err
		}
		if err = s.checkLoginOwners(ctx, user.ID, logins); err != nil {
			return err
		}

		row := toUserRow(user)
		if err = s.tables.users.Update(ctx, &row); err != nil {
			if errors.Is(err, store.ErrNoRowsAffected) {
				return ErrNotFound
			}
			if errors.Is(err, store.ErrUniqueViolation) {
				return fmt.Errorf("%w: %w: %w", ErrPersistenceFailure, ErrDuplicateUsername, err)
			}
			return err
		}

		return s.replaceCollections(ctx, user.ID, claims, logins, roles)
	})
	if err != nil {
		return err
	}

	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	sortRoleNames(names)

	user.Claims = claims
	user.Logins = logins
	user.Roles = names

	return nil
}

// DeleteUser removes the user's claims, logins and role memberships and then
// the user row. Roles themselves are left untouched.
func (s *userStore) DeleteUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return ErrNotFound
	}

	return withinUnitOfWork(ctx, s.db, "*userStore.DeleteUser", func(ctx context.Context) error {
		if err := s.ensureUser(ctx, user.ID); err != nil {
			return err
		}

		byUser := sq.Eq{"user_id": user.ID}
		if _, err := s.tables.claims.DeleteWhere(ctx, byUser); err != nil {
			return err
		}
		if _, err := s.tables.logins.DeleteWhere(ctx, byUser); err != nil {
			return err
		}
		if _, err := s.tables.userRoles.DeleteWhere(ctx, byUser); err != nil {
			return err
		}

		if err := s.tables.users.Delete(ctx, &userRow{ID: user.ID}); err != nil {
			if errors.Is(err, store.ErrNoRowsAffected) {
				return ErrNotFound
			}
			return err
		}

		return nil
	})
}

// FindByID returns the fully loaded user with the given id.
func (s *userStore) FindByID(ctx context.Context, userID string) (*models.User, error) {
	return s.findOne(ctx, "*userStore.FindByID", sq.Eq{"id": userID})
}

// FindByName returns the user whose username equals userName ignoring case.
func (s *userStore) FindByName(ctx context.Context, userName string) (*models.User, error) {
	return s.findOne(ctx, "*userStore.FindByName", sq.Eq{"normalized_user_name": normalizeKey(userName)})
}

// FindByEmail returns the user whose email equals email ignoring case. An
// empty email never matches.
func (s *userStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, ErrNotFound
	}

	return s.findOne(ctx, "*userStore.FindByEmail", sq.Eq{"normalized_email": normalizeKey(email)})
}

// FindByLogin returns the owner of the (provider, providerKey) login.
func (s *userStore) FindByLogin(ctx context.Context, provider, providerKey string) (*models.User, error) {
	var user *models.User

	err := withinUnitOfWork(ctx, s.db, "*userStore.FindByLogin", func(ctx context.Context) error {
		login, err := s.tables.logins.GetByID(ctx, provider, providerKey)
		if errors.Is(err, store.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		user, err = s.load(ctx, sq.Eq{"id": login.UserID})
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ListUsers returns every user with its collections loaded. The number of
// queries does not depend on the number of users.
func (s *userStore) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)

	err := withinUnitOfWork(ctx, s.db, "*userStore.ListUsers", func(ctx context.Context) error {
		rows, err := s.tables.users.Query(ctx, nil, "id")
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		claims, err := s.tables.claims.Query(ctx, nil, "id")
		if err != nil {
			return err
		}
		logins, err := s.tables.logins.Query(ctx, nil, "login_provider", "provider_key")
		if err != nil {
			return err
		}
		links, err := s.tables.userRoles.Query(ctx, nil)
		if err != nil {
			return err
		}
		roles, err := s.tables.roles.Query(ctx, nil)
		if err != nil {
			return err
		}

		roleNames := make(map[string]string, len(roles))
		for _, r := range roles {
			roleNames[r.ID] = r.Name
		}

		index := make(map[string]int, len(rows))
		for i, r := range rows {
			users = append(users, r.toModel())
			index[r.ID] = i
		}

		for _, c := range claims {
			if i, ok := index[c.UserID]; ok {
				users[i].Claims = append(users[i].Claims, c.toModel())
			}
		}
		for _, l := range logins {
			if i, ok := index[l.UserID]; ok {
				users[i].Logins = append(users[i].Logins, l.toModel())
			}
		}
		for _, link := range links {
			i, ok := index[link.UserID]
			if !ok {
				continue
			}
			if name, found := roleNames[link.RoleID]; found {
				users[i].Roles = append(users[i].Roles, name)
			}
		}
		for i := range users {
			sortRoleNames(users[i].Roles)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (s *userStore) findOne(ctx context.Context, fn string, pred store.Predicate) (*models.User, error) {
	var user *models.User

	err := withinUnitOfWork(ctx, s.db, fn, func(ctx context.Context) error {
		var err error
		user, err = s.load(ctx, pred)
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// load reads the first user matching pred and its collections.
func (s *userStore) load(ctx context.Context, pred store.Predicate) (*models.User, error) {
	rows, err := s.tables.users.Query(ctx, pred, "id")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	user := rows[0].toModel()
	byUser := sq.Eq{"user_id": user.ID}

	claims, err := s.tables.claims.Query(ctx, byUser, "id")
	if err != nil {
		return nil, err
	}
	for _, c := range claims {
		user.Claims = append(user.Claims, c.toModel())
	}

	logins, err := s.tables.logins.Query(ctx, byUser, "login_provider", "provider_key")
	if err != nil {
		return nil, err
	}
	for _, l := range logins {
		user.Logins = append(user.Logins, l.toModel())
	}

	if user.Roles, err = s.roleNames(ctx, user.ID); err != nil {
		return nil, err
	}

	return &user, nil
}

// roleNames returns the sorted names of the roles userID is a member of.
func (s *userStore) roleNames(ctx context.Context, userID string) ([]string, error) {
	links, err := s.tables.userRoles.Query(ctx, sq.Eq{"user_id": userID})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(links))
	if len(links) == 0 {
		return names, nil
	}

	ids := make([]string, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.RoleID)
	}

	roles, err := s.tables.roles.Query(ctx, sq.Eq{"id": ids})
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		names = append(names, r.Name)
	}
	sortRoleNames(names)

	return names, nil
}

func (s *userStore) ensureUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNotFound
	}

	n, err := s.tables.users.Count(ctx, sq.Eq{"id": userID})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// checkUnique looks for another user holding userName or a non-empty email.
// excludeID names the user being updated and is empty on create.
func (s *userStore) checkUnique(ctx context.Context, excludeID, userName, email string) error {
	byName := sq.And{sq.Eq{"normalized_user_name": normalizeKey(userName)}}
	if excludeID != "" {
		byName = append(byName, sq.NotEq{"id": excludeID})
	}

	n, err := s.tables.users.Count(ctx, byName)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicateUsername
	}

	if email == "" {
		return nil
	}

	byEmail := sq.And{sq.Eq{"normalized_email": normalizeKey(email)}}
	if excludeID != "" {
		byEmail = append(byEmail, sq.NotEq{"id": excludeID})
	}

	if n, err = s.tables.users.Count(ctx, byEmail); err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicateEmail
	}

	return nil
}

// resolveRoles maps role names to stored roles, dropping repeats.
func (s *userStore) resolveRoles(ctx context.Context, names []string) ([]roleRow, error) {
	roles := make([]roleRow, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		role, found, err := findRoleByName(ctx, s.tables, name)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrRoleNotFound, name)
		}
		if seen[role.ID] {
			continue
		}
		seen[role.ID] = true
		roles = append(roles, role)
	}

	return roles, nil
}

func (s *userStore) checkLoginOwners(ctx context.Context, userID string, logins []models.Login) error {
	for _, l := range logins {
		existing, err := s.tables.logins.GetByID(ctx, l.Provider, l.ProviderKey)
		if errors.Is(err, store.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if existing.UserID != userID {
			return ErrLoginAlreadyAssociated
		}
	}

	return nil
}

// replaceCollections rewrites the child rows of userID.
func (s *userStore) replaceCollections(ctx context.Context, userID string, claims []models.Claim, logins []models.Login, roles []roleRow) error {
	byUser := sq.Eq{"user_id": userID}

	if _, err := s.tables.claims.DeleteWhere(ctx, byUser); err != nil {
		return err
	}
	for _, c := range claims {
		row := claimRow{ID: s.ids.Generate(), UserID: userID, Type: c.Type, Value: c.Value}
		if err := s.tables.claims.Save(ctx, &row); err != nil {
			return err
		}
	}

	if _, err := s.tables.logins.DeleteWhere(ctx, byUser); err != nil {
		return err
	}
	for _, l := range logins {
		row := loginRow{Provider: l.Provider, ProviderKey: l.ProviderKey, ProviderDisplayName: l.ProviderDisplayName, UserID: userID}
		if err := s.tables.logins.Save(ctx, &row); err != nil {
			if errors.Is(err, store.ErrUniqueViolation) {
				return fmt.Errorf("%w: %w: %w", ErrPersistenceFailure, ErrLoginAlreadyAssociated, err)
			}
			return err
		}
	}

	if _, err := s.tables.userRoles.DeleteWhere(ctx, byUser); err != nil {
		return err
	}
	for _, r := range roles {
		if err := s.tables.userRoles.Save(ctx, &userRoleRow{UserID: userID, RoleID: r.ID}); err != nil {
			return err
		}
	}

	return nil
}

func distinctClaims(claims []models.Claim) []models.Claim {
	out := make([]models.Claim, 0, len(claims))
	seen := make(map[models.Claim]bool, len(claims))
	for _, c := range claims {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}

	return out
}

func distinctLogins(logins []models.Login) []models.Login {
	type key struct{ provider, providerKey string }

	out := make([]models.Login, 0, len(logins))
	seen := make(map[key]bool, len(logins))
	for _, l := range logins {
		k := key{l.Provider, l.ProviderKey}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, l)
	}

	return out
}

// findRoleByName looks a role up ignoring case.
func findRoleByName(ctx context.Context, t *tables, name string) (roleRow, bool, error) {
	roles, err := t.roles.Query(ctx, sq.Eq{"normalized_name": normalizeKey(name)}, "id")
	if err != nil {
		return roleRow{}, false, err
	}
	if len(roles) == 0 {
		return roleRow{}, false, nil
	}

	return roles[0], true, nil
}
