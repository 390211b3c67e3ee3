package entities

import "database/sql"

type User struct {
	Login    string         `db:"login"`
	Email    sql.NullString `db:"email"`
	PassHash []byte         `db:"pass_hash"`
}
