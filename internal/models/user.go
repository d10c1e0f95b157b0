// Package models contains the typed records backing the flat-file tables and
// the application error taxonomy.
package models

// Layouts for the persisted date and timestamp columns.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// UserColumns is the on-disk column order of the users table. Order is the
// file-format contract and must not change.
var UserColumns = []string{"user_id", "username", "password", "created_at"}

// User represents a registered account.
//
// Password is stored verbatim in users.csv. That is a deliberate carry-over of
// the stored-table contract and a documented defect, not something to rely on;
// see DESIGN.md before deploying this anywhere that matters.
type User struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Password  string `json:"-"`
	CreatedAt string `json:"created_at"`
}

// Row returns the user as a table row in UserColumns order.
func (u User) Row() []string {
	return []string{u.UserID, u.Username, u.Password, u.CreatedAt}
}

// UserFromRow builds a User from a row in UserColumns order.
func UserFromRow(row []string) User {
	return User{
		UserID:    row[0],
		Username:  row[1],
		Password:  row[2],
		CreatedAt: row[3],
	}
}
