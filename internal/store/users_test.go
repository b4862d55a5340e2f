package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		dbErr    error
		wantErr  error
		wantCall bool
	}{
		{name: "valid user", email: "  Ana@Example.com ", password: "secret", wantCall: true},
		{name: "duplicate email", email: "ana@example.com", password: "secret", dbErr: &pgconn.PgError{Code: "23505"}, wantErr: ErrUserExists, wantCall: true},
		{name: "empty email", email: " ", password: "secret"},
		{name: "empty password", email: "ana@example.com"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New: %v", err)
			}
			defer db.Close()

			if tc.wantCall {
				expect := mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (email, password_hash)`)).
					WithArgs("ana@example.com", sqlmock.AnyArg())
				if tc.dbErr != nil {
					expect.WillReturnError(tc.dbErr)
				} else {
					expect.WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testOwnerID))
				}
			}

			user, err := New(db).CreateUser(context.Background(), tc.email, tc.password)
			switch {
			case tc.wantErr != nil:
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("CreateUser() error = %v, want %v", err, tc.wantErr)
				}
			case !tc.wantCall:
				if err == nil {
					t.Fatalf("CreateUser() expected validation error")
				}
			default:
				if err != nil {
					t.Fatalf("CreateUser() unexpected error: %v", err)
				}
				if user.ID != testOwnerID || user.Email != "ana@example.com" {
					t.Fatalf("unexpected user: %#v", user)
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	tests := []struct {
		name     string
		password string
		rows     *sqlmock.Rows
		dbErr    error
		wantErr  error
	}{
		{name: "valid credentials", password: "correct", rows: sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(testOwnerID, hash)},
		{name: "wrong password", password: "nope", rows: sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(testOwnerID, hash), wantErr: ErrInvalidCredentials},
		{name: "unknown user", password: "correct", dbErr: sql.ErrNoRows, wantErr: ErrInvalidCredentials},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New: %v", err)
			}
			defer db.Close()

			expect := mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, password_hash FROM users WHERE email = $1`)).
				WithArgs("ana@example.com")
			if tc.dbErr != nil {
				expect.WillReturnError(tc.dbErr)
			} else {
				expect.WillReturnRows(tc.rows)
			}

			user, err := New(db).Authenticate(context.Background(), "Ana@example.com", tc.password)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Authenticate() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() unexpected error: %v", err)
			}
			if user.ID != testOwnerID {
				t.Fatalf("Authenticate() id = %q, want %q", user.ID, testOwnerID)
			}
		})
	}
}
