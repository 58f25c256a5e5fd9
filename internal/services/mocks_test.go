package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/TallerAbierto/craftshare/internal/models"
)

// fakeDB implements DB with per-method closures so each test controls
// exactly the statements it expects.
type fakeDB struct {
	QueryFunc    func(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) Row
	ExecFunc     func(ctx context.Context, sql string, args ...any) (CommandTag, error)
	BeginFunc    func(ctx context.Context) (Tx, error)
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	if f.QueryFunc == nil {
		return nil, errors.New("unexpected Query call")
	}
	return f.QueryFunc(ctx, sql, args...)
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) Row {
	if f.QueryRowFunc == nil {
		return errRow{errors.New("unexpected QueryRow call")}
	}
	return f.QueryRowFunc(ctx, sql, args...)
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	if f.ExecFunc == nil {
		return nil, errors.New("unexpected Exec call")
	}
	return f.ExecFunc(ctx, sql, args...)
}

func (f *fakeDB) Begin(ctx context.Context) (Tx, error) {
	if f.BeginFunc == nil {
		return nil, errors.New("unexpected Begin call")
	}
	return f.BeginFunc(ctx)
}

// fakeTx mirrors fakeDB inside a transaction and records its outcome.
type fakeTx struct {
	QueryFunc    func(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) Row
	ExecFunc     func(ctx context.Context, sql string, args ...any) (CommandTag, error)

	committed  bool
	rolledBack bool
}

func (f *fakeTx) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	if f.QueryFunc == nil {
		return nil, errors.New("unexpected tx Query call")
	}
	return f.QueryFunc(ctx, sql, args...)
}

func (f *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) Row {
	if f.QueryRowFunc == nil {
		return errRow{errors.New("unexpected tx QueryRow call")}
	}
	return f.QueryRowFunc(ctx, sql, args...)
}

func (f *fakeTx) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	if f.ExecFunc == nil {
		return nil, errors.New("unexpected tx Exec call")
	}
	return f.ExecFunc(ctx, sql, args...)
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	f.rolledBack = true
	return nil
}

type fakeCommandTag struct {
	rowsAffected int64
}

func (t fakeCommandTag) RowsAffected() int64 { return t.rowsAffected }

// fakeRows replays a fixed set of rows.
type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan expects %d values, got %d", len(row), len(dest))
	}
	for i, v := range row {
		if err := assignValue(dest[i], v); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return r.err }

type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	if len(r.values) == 0 {
		return pgx.ErrNoRows
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan expects %d values, got %d", len(r.values), len(dest))
	}
	for i, v := range r.values {
		if err := assignValue(dest[i], v); err != nil {
			return err
		}
	}
	return nil
}

func rowFromValues(values ...any) Row {
	return fakeRow{values: values}
}

type errRow struct {
	err error
}

func (r errRow) Scan(dest ...any) error { return r.err }

func assignValue(dest, src any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("scan destination must be a non-nil pointer, got %T", dest)
	}
	elem := dv.Elem()
	if src == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	sv := reflect.ValueOf(src)
	if sv.Type().AssignableTo(elem.Type()) {
		elem.Set(sv)
		return nil
	}
	if sv.Type().ConvertibleTo(elem.Type()) {
		elem.Set(sv.Convert(elem.Type()))
		return nil
	}
	return fmt.Errorf("cannot scan %T into %T", src, dest)
}

// Cross-service fakes.

type fakeAlbumEnsurer struct {
	albumID uuid.UUID
	err     error
	calls   int
}

func (f *fakeAlbumEnsurer) EnsureDerivedAlbum(ctx context.Context, q Querier, ownerID, sourceUserID uuid.UUID, kind models.AlbumKind, title string) (uuid.UUID, error) {
	f.calls++
	if f.err != nil {
		return uuid.Nil, f.err
	}
	if f.albumID == uuid.Nil {
		return uuid.New(), nil
	}
	return f.albumID, nil
}

type fakeBulkSharer struct {
	linked int64
	err    error
	calls  int
}

func (f *fakeBulkSharer) BulkSharePublicImages(ctx context.Context, q Querier, sourceUserID, recipientID, albumID uuid.UUID) (int64, error) {
	f.calls++
	return f.linked, f.err
}

type fakeFriendChecker struct {
	isFriend bool
	err      error
}

func (f *fakeFriendChecker) IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	return f.isFriend, f.err
}

type fakeAccessChecker struct {
	canAccess bool
	err       error
}

func (f *fakeAccessChecker) CanAccessImage(ctx context.Context, viewerID, imageID uuid.UUID) (bool, error) {
	return f.canAccess, f.err
}

type fakeNotifier struct {
	created []CreateNotificationParams
}

func (f *fakeNotifier) Create(ctx context.Context, params CreateNotificationParams) (*models.Notification, error) {
	f.created = append(f.created, params)
	return &models.Notification{ID: uuid.New(), UserID: params.UserID, Type: params.Type}, nil
}

type fakePublisher struct {
	events []string
	users  []uuid.UUID
}

func (f *fakePublisher) PublishToUser(ctx context.Context, userID uuid.UUID, event string, payload any) error {
	f.events = append(f.events, event)
	f.users = append(f.users, userID)
	return nil
}

// runInline makes async dispatch synchronous so tests can assert on it.
func runInline(fn func()) { fn() }
