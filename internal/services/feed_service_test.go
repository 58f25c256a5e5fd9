package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func feedRowValues(imageID, ownerID uuid.UUID, isShared bool, comments int) []any {
	return []any{
		imageID, uuid.New(), "Bowl", "", "img/bowl.jpg", true, time.Now(),
		"Ceramics", ownerID, "Ana", isShared, comments,
	}
}

func TestFeedService_ResolveFeed_AnnotatesRows(t *testing.T) {
	ownImage := uuid.New()
	sharedImage := uuid.New()
	viewerID := uuid.New()

	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			return &fakeRows{rows: [][]any{
				feedRowValues(sharedImage, uuid.New(), true, 2),
				feedRowValues(ownImage, viewerID, false, 0),
			}}, nil
		},
	}

	svc := NewFeedService(db)
	items, err := svc.ResolveFeed(context.Background(), viewerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if !items[0].IsShared || items[0].CommentCount != 2 {
		t.Fatalf("expected shared item with 2 comments, got %+v", items[0])
	}
	if items[1].IsShared {
		t.Fatalf("own image must not be flagged shared: %+v", items[1])
	}
}

func TestFeedService_ResolveFeed_Empty(t *testing.T) {
	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			return &fakeRows{}, nil
		},
	}

	svc := NewFeedService(db)
	items, err := svc.ResolveFeed(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", items)
	}
}

func TestFeedService_GetImage_NoAccessLooksLikeMissing(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues()
		},
	}

	svc := NewFeedService(db)
	_, err := svc.GetImage(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}

func TestFeedService_GetImage_Success(t *testing.T) {
	imageID := uuid.New()
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(feedRowValues(imageID, uuid.New(), true, 1)...)
		},
	}

	svc := NewFeedService(db)
	item, err := svc.GetImage(context.Background(), uuid.New(), imageID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.ID != imageID || !item.IsShared {
		t.Fatalf("unexpected item: %+v", item)
	}
}

func TestFeedService_CanAccessImage(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(true)
		},
	}

	svc := NewFeedService(db)
	canAccess, err := svc.CanAccessImage(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !canAccess {
		t.Fatal("expected access")
	}
}
