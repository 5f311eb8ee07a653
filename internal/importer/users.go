package importer

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/fooddept/fdbms/internal/auth"
	"github.com/fooddept/fdbms/internal/models"
)

const (
	fieldUsername = "username"
	fieldRole     = "role"
	fieldPassword = "password"
)

// UserSchema lists the column names accepted for each user field.
var UserSchema = Schema{
	{Name: fieldUsername, Synonyms: []string{"username", "user name", "user_name", "user", "login"}},
	{Name: fieldRole, Synonyms: []string{"role", "user role"}},
	{Name: fieldPassword, Synonyms: []string{"password"}},
}

// UserKey is the natural key of a user: the case-insensitive username.
func UserKey(u models.User) string {
	return naturalKey(u.Username)
}

// Users is the import kind for user accounts. Passwords are stored as
// bcrypt hashes; accounts created without one get a random password that
// an admin has to reset. Unknown roles leave the role unchanged, and new
// accounts default to User.
var Users = Kind[models.User]{
	Name:   "users",
	Schema: UserSchema,
	Key:    UserKey,
	RecordKey: func(rec Record) (string, bool) {
		if !rec.Has(fieldUsername) {
			return "", false
		}
		return naturalKey(rec[fieldUsername].String()), true
	},
	Build: func(rec Record) (models.User, bool) {
		u := applyUser(models.User{Role: models.RoleUser}, rec)
		if u.PasswordHash == "" {
			hash, err := auth.HashPassword(auth.TemporaryPassword())
			if err != nil {
				slog.Error("failed to set temporary password", "username", u.Username, "error", err)
				return models.User{}, false
			}
			u.PasswordHash = hash
		}
		return u, true
	},
	Apply: applyUser,
	IDs: func([]models.User) func(models.User) models.User {
		return func(u models.User) models.User {
			u.ID = uuid.NewString()
			return u
		}
	},
}

func applyUser(u models.User, rec Record) models.User {
	if rec.Has(fieldUsername) {
		u.Username = strings.TrimSpace(rec[fieldUsername].String())
	}
	if rec.Has(fieldRole) {
		if role, ok := models.ParseRole(rec[fieldRole].String()); ok {
			u.Role = role
		}
	}
	if rec.Has(fieldPassword) {
		hash, err := auth.HashPassword(rec[fieldPassword].String())
		if err != nil {
			slog.Warn("ignoring imported password", "username", u.Username, "error", err)
		} else {
			u.PasswordHash = hash
		}
	}
	return u
}
