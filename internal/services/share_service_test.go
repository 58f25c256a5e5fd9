package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/TallerAbierto/craftshare/internal/models"
)

func newShareServiceForTest(db DB, isFriend bool) (*ShareService, *fakeAlbumEnsurer, *fakeNotifier, *fakePublisher) {
	albums := &fakeAlbumEnsurer{albumID: uuid.New()}
	notifier := &fakeNotifier{}
	publisher := &fakePublisher{}
	svc := NewShareService(db, albums, &fakeFriendChecker{isFriend: isFriend}, notifier, publisher)
	svc.async = runInline
	return svc, albums, notifier, publisher
}

func TestShareService_ShareImage_ImageMissing(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues()
		},
	}
	svc, _, _, _ := newShareServiceForTest(db, true)
	_, err := svc.ShareImage(context.Background(), uuid.New(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}

func TestShareService_ShareImage_NotOwner(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(uuid.New())
		},
	}
	svc, _, _, _ := newShareServiceForTest(db, true)
	_, err := svc.ShareImage(context.Background(), uuid.New(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrNotImageOwner) {
		t.Fatalf("expected ErrNotImageOwner, got %v", err)
	}
}

func TestShareService_ShareImage_NotFriends(t *testing.T) {
	actorID := uuid.New()
	call := 0
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			call++
			if call == 1 {
				return rowFromValues(actorID)
			}
			return rowFromValues(models.UserStatusActive)
		},
	}
	svc, _, _, _ := newShareServiceForTest(db, false)
	_, err := svc.ShareImage(context.Background(), actorID, uuid.New(), uuid.New())
	if !errors.Is(err, ErrNotFriends) {
		t.Fatalf("expected ErrNotFriends, got %v", err)
	}
}

func TestShareService_ShareImage_TargetMissing(t *testing.T) {
	actorID := uuid.New()
	call := 0
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			call++
			if call == 1 {
				return rowFromValues(actorID)
			}
			return rowFromValues()
		},
	}
	svc, _, _, _ := newShareServiceForTest(db, true)
	_, err := svc.ShareImage(context.Background(), actorID, uuid.New(), uuid.New())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestShareService_ShareImage_AlreadyShared(t *testing.T) {
	actorID := uuid.New()
	call := 0
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			call++
			switch call {
			case 1:
				return rowFromValues(actorID)
			case 2:
				return rowFromValues(models.UserStatusActive)
			case 3:
				return rowFromValues("Ana")
			default:
				return rowFromValues(true)
			}
		},
	}
	svc, _, _, _ := newShareServiceForTest(db, true)
	_, err := svc.ShareImage(context.Background(), actorID, uuid.New(), uuid.New())
	if !errors.Is(err, ErrAlreadyShared) {
		t.Fatalf("expected ErrAlreadyShared, got %v", err)
	}
}

func TestShareService_ShareImage_AlbumFull(t *testing.T) {
	actorID := uuid.New()
	call := 0
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			call++
			switch call {
			case 1:
				return rowFromValues(actorID)
			case 2:
				return rowFromValues(models.UserStatusActive)
			case 3:
				return rowFromValues("Ana")
			default:
				return rowFromValues(false)
			}
		},
		BeginFunc: func(ctx context.Context) (Tx, error) {
			return &fakeTx{
				QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
					return rowFromValues(models.AlbumCapacity)
				},
			}, nil
		},
	}
	svc, _, _, _ := newShareServiceForTest(db, true)
	_, err := svc.ShareImage(context.Background(), actorID, uuid.New(), uuid.New())
	if !errors.Is(err, ErrAlbumFull) {
		t.Fatalf("expected ErrAlbumFull, got %v", err)
	}
}

func TestShareService_ShareImage_Success(t *testing.T) {
	actorID := uuid.New()
	imageID := uuid.New()
	targetID := uuid.New()
	albumID := uuid.New()
	linkID := uuid.New()

	txCall := 0
	tx := &fakeTx{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			txCall++
			if txCall == 1 {
				return rowFromValues(4)
			}
			return rowFromValues(linkID, imageID, targetID, albumID, time.Now())
		},
	}

	call := 0
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			call++
			switch call {
			case 1:
				return rowFromValues(actorID)
			case 2:
				return rowFromValues(models.UserStatusActive)
			case 3:
				return rowFromValues("Ana")
			default:
				return rowFromValues(false)
			}
		},
		BeginFunc: func(ctx context.Context) (Tx, error) {
			return tx, nil
		},
	}

	svc, albums, notifier, publisher := newShareServiceForTest(db, true)
	albums.albumID = albumID

	link, err := svc.ShareImage(context.Background(), actorID, imageID, targetID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link.ID != linkID || link.AlbumID != albumID {
		t.Fatalf("unexpected link: %+v", link)
	}
	if !tx.committed {
		t.Fatal("expected transaction to commit")
	}
	if len(notifier.created) != 1 || notifier.created[0].Type != models.NotificationImageShared {
		t.Fatalf("expected image_shared notification, got %+v", notifier.created)
	}
	if len(publisher.users) != 1 || publisher.users[0] != targetID {
		t.Fatalf("expected push to target, got %v", publisher.users)
	}
}

func TestShareService_ShareImage_LostInsertRace(t *testing.T) {
	actorID := uuid.New()

	txCall := 0
	tx := &fakeTx{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			txCall++
			if txCall == 1 {
				return rowFromValues(0)
			}
			return rowFromValues()
		},
	}

	call := 0
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			call++
			switch call {
			case 1:
				return rowFromValues(actorID)
			case 2:
				return rowFromValues(models.UserStatusActive)
			case 3:
				return rowFromValues("Ana")
			default:
				return rowFromValues(false)
			}
		},
		BeginFunc: func(ctx context.Context) (Tx, error) {
			return tx, nil
		},
	}

	svc, _, notifier, _ := newShareServiceForTest(db, true)
	_, err := svc.ShareImage(context.Background(), actorID, uuid.New(), uuid.New())
	if !errors.Is(err, ErrAlreadyShared) {
		t.Fatalf("expected ErrAlreadyShared, got %v", err)
	}
	if !tx.rolledBack {
		t.Fatal("expected transaction to roll back")
	}
	if len(notifier.created) != 0 {
		t.Fatalf("expected no notification, got %+v", notifier.created)
	}
}

func TestShareService_ShareAlbum_Empty(t *testing.T) {
	actorID := uuid.New()
	call := 0
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			call++
			if call == 1 {
				return rowFromValues(actorID)
			}
			return rowFromValues(0)
		},
	}
	svc, _, _, _ := newShareServiceForTest(db, true)
	_, err := svc.ShareAlbum(context.Background(), actorID, uuid.New(), uuid.New())
	if !errors.Is(err, ErrEmptyAlbum) {
		t.Fatalf("expected ErrEmptyAlbum, got %v", err)
	}
}

func TestShareService_ShareAlbum_AllDuplicates(t *testing.T) {
	actorID := uuid.New()

	tx := &fakeTx{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(2)
		},
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			return fakeCommandTag{rowsAffected: 0}, nil
		},
	}

	call := 0
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			call++
			switch call {
			case 1:
				return rowFromValues(actorID)
			case 2:
				return rowFromValues(3)
			case 3:
				return rowFromValues(models.UserStatusActive)
			default:
				return rowFromValues("Ana")
			}
		},
		BeginFunc: func(ctx context.Context) (Tx, error) {
			return tx, nil
		},
	}

	svc, _, _, _ := newShareServiceForTest(db, true)
	_, err := svc.ShareAlbum(context.Background(), actorID, uuid.New(), uuid.New())
	if !errors.Is(err, ErrAlreadyShared) {
		t.Fatalf("expected ErrAlreadyShared, got %v", err)
	}
	if !tx.rolledBack {
		t.Fatal("expected transaction to roll back")
	}
}

func TestShareService_ShareAlbum_Success(t *testing.T) {
	actorID := uuid.New()
	targetID := uuid.New()

	tx := &fakeTx{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(5)
		},
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			return fakeCommandTag{rowsAffected: 3}, nil
		},
	}

	call := 0
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			call++
			switch call {
			case 1:
				return rowFromValues(actorID)
			case 2:
				return rowFromValues(3)
			case 3:
				return rowFromValues(models.UserStatusActive)
			default:
				return rowFromValues("Ana")
			}
		},
		BeginFunc: func(ctx context.Context) (Tx, error) {
			return tx, nil
		},
	}

	svc, _, notifier, publisher := newShareServiceForTest(db, true)
	linked, err := svc.ShareAlbum(context.Background(), actorID, uuid.New(), targetID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if linked != 3 {
		t.Fatalf("expected 3 links, got %d", linked)
	}
	if !tx.committed {
		t.Fatal("expected transaction to commit")
	}
	if len(notifier.created) != 1 || notifier.created[0].Type != models.NotificationAlbumShared {
		t.Fatalf("expected album_shared notification, got %+v", notifier.created)
	}
	if len(publisher.events) != 1 || publisher.events[0] != EventAlbumShared {
		t.Fatalf("expected album_shared event, got %v", publisher.events)
	}
}

func TestShareService_BulkSharePublicImages_FullAlbumIsNoop(t *testing.T) {
	execs := 0
	q := &fakeTx{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(models.AlbumCapacity)
		},
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			execs++
			return fakeCommandTag{}, nil
		},
	}

	svc, _, _, _ := newShareServiceForTest(&fakeDB{}, true)
	linked, err := svc.BulkSharePublicImages(context.Background(), q, uuid.New(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if linked != 0 {
		t.Fatalf("expected no links, got %d", linked)
	}
	if execs != 0 {
		t.Fatal("expected no insert attempt against a full album")
	}
}

func TestShareService_ListSharedWithUser_ReturnsRows(t *testing.T) {
	imageID := uuid.New()
	sharerID := uuid.New()
	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			return &fakeRows{rows: [][]any{
				{imageID, uuid.New(), "Vase", "", "img/vase.jpg", true, time.Now(), sharerID, "Ana", time.Now()},
			}}, nil
		},
	}

	svc, _, _, _ := newShareServiceForTest(db, true)
	images, err := svc.ListSharedWithUser(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(images))
	}
	if images[0].ID != imageID || images[0].SharedByName != "Ana" {
		t.Fatalf("unexpected image: %+v", images[0])
	}
}
