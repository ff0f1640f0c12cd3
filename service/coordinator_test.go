package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"vidgate/entities"
	"vidgate/pkg/rabbitmq"
	"vidgate/repository"
	"vidgate/storage"
)

func newTestCoordinator() (Coordinator, *repository.MemoryRepo, *storage.MemoryClient) {
	repo := repository.NewMemoryRepo()
	store := storage.NewMemoryClient()
	coordinator := NewCoordinator(repo, store, rabbitmq.NopPublisher{}, "http://gateway.test")
	return coordinator, repo, store
}

func mustUpload(t *testing.T, c Coordinator, uploader, name, content string) uuid.UUID {
	t.Helper()
	id, err := c.Upload(context.Background(), entities.NewIdentity(uploader), name, strings.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("upload %q by %q failed: %v", name, uploader, err)
	}
	return id
}

func TestUpload_AnonymousRejectedBeforeStorage(t *testing.T) {
	c, repo, store := newTestCoordinator()

	// A storage failure here would mask the real assertion: the backend must
	// not be contacted at all.
	store.FailStore = errors.New("backend must not be called")

	_, err := c.Upload(context.Background(), entities.Identity{}, "cat.mp4", strings.NewReader("xx"), 2)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	videos, _ := repo.ListByUploader(context.Background(), "")
	if len(videos) != 0 {
		t.Fatalf("anonymous upload left %d records", len(videos))
	}
}

func TestUpload_IdsAreMintedAndUnique(t *testing.T) {
	c, _, store := newTestCoordinator()

	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 50; i++ {
		id := mustUpload(t, c, "alice", "clip.mp4", "payload")
		if id == uuid.Nil {
			t.Fatal("upload returned nil id")
		}
		if seen[id] {
			t.Fatalf("id %s returned twice", id)
		}
		seen[id] = true
		if !store.Has(id.String() + ".mp4") {
			t.Fatalf("no bytes stored for %s", id)
		}
	}
}

func TestUpload_BackendFailureLeavesNoOrphanRecord(t *testing.T) {
	c, repo, store := newTestCoordinator()
	store.FailStore = errors.New("disk full")

	_, err := c.Upload(context.Background(), entities.NewIdentity("alice"), "cat.mp4", strings.NewReader("xx"), 2)

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.Op != "store" {
		t.Fatalf("expected op store, got %q", upstreamErr.Op)
	}

	videos, _ := repo.ListByUploader(context.Background(), "alice")
	if len(videos) != 0 {
		t.Fatalf("failed upload left %d records", len(videos))
	}
}

func TestFetch_OwnerAlwaysStrangerOnlyAfterPublish(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCoordinator()
	alice := entities.NewIdentity("alice")
	bob := entities.NewIdentity("bob")

	id := mustUpload(t, c, "alice", "cat.mp4", "meow")

	body, err := c.Fetch(ctx, alice, id)
	if err != nil {
		t.Fatalf("owner fetch failed: %v", err)
	}
	body.Close()

	if _, err := c.Fetch(ctx, bob, id); !errors.Is(err, ErrNotFoundOrDenied) {
		t.Fatalf("stranger fetch of private video: expected ErrNotFoundOrDenied, got %v", err)
	}

	if err := c.Publish(ctx, alice, id); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	body, err = c.Fetch(ctx, bob, id)
	if err != nil {
		t.Fatalf("stranger fetch after publish failed: %v", err)
	}
	got, _ := io.ReadAll(body)
	body.Close()
	if !bytes.Equal(got, []byte("meow")) {
		t.Fatalf("fetched bytes = %q, want %q", got, "meow")
	}
}

func TestFetch_AbsentAndPrivateAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCoordinator()
	bob := entities.NewIdentity("bob")

	privateId := mustUpload(t, c, "alice", "cat.mp4", "meow")

	_, errPrivate := c.Fetch(ctx, bob, privateId)
	_, errAbsent := c.Fetch(ctx, bob, uuid.New())

	if !errors.Is(errPrivate, ErrNotFoundOrDenied) || !errors.Is(errAbsent, ErrNotFoundOrDenied) {
		t.Fatalf("expected ErrNotFoundOrDenied for both, got %v and %v", errPrivate, errAbsent)
	}
	if errPrivate.Error() != errAbsent.Error() {
		t.Fatalf("error shapes differ: %q vs %q", errPrivate, errAbsent)
	}
}

func TestFetch_BackendGapSurfacesUpstreamError(t *testing.T) {
	ctx := context.Background()
	c, _, store := newTestCoordinator()
	alice := entities.NewIdentity("alice")

	id := mustUpload(t, c, "alice", "cat.mp4", "meow")
	store.FailRetrieve = errors.New("object vanished")

	_, err := c.Fetch(ctx, alice, id)
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestPublish_IsIdempotentAndOwnerOnly(t *testing.T) {
	ctx := context.Background()
	c, repo, _ := newTestCoordinator()
	alice := entities.NewIdentity("alice")

	id := mustUpload(t, c, "alice", "cat.mp4", "meow")

	if err := c.Publish(ctx, entities.NewIdentity("bob"), id); !errors.Is(err, ErrNotFoundOrDenied) {
		t.Fatalf("non-owner publish: expected ErrNotFoundOrDenied, got %v", err)
	}
	if err := c.Publish(ctx, alice, uuid.New()); !errors.Is(err, ErrNotFoundOrDenied) {
		t.Fatalf("publish of absent id: expected ErrNotFoundOrDenied, got %v", err)
	}

	if err := c.Publish(ctx, alice, id); err != nil {
		t.Fatalf("first publish failed: %v", err)
	}
	if err := c.Publish(ctx, alice, id); err != nil {
		t.Fatalf("second publish failed: %v", err)
	}

	video, _ := repo.FindVideoById(ctx, id)
	if video == nil || !video.Public {
		t.Fatal("video not public after publish")
	}
}

func TestDelete_EraseFailureRetainsRecord(t *testing.T) {
	ctx := context.Background()
	c, repo, store := newTestCoordinator()
	alice := entities.NewIdentity("alice")

	id := mustUpload(t, c, "alice", "cat.mp4", "meow")
	store.FailErase = errors.New("backend down")

	err := c.Delete(ctx, alice, id)
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}

	video, _ := repo.FindVideoById(ctx, id)
	if video == nil {
		t.Fatal("record removed despite erase failure")
	}

	store.FailErase = nil
	body, err := c.Fetch(ctx, alice, id)
	if err != nil {
		t.Fatalf("video no longer queryable after failed delete: %v", err)
	}
	body.Close()
}

func TestDelete_OwnerOnlyThenGone(t *testing.T) {
	ctx := context.Background()
	c, _, store := newTestCoordinator()
	alice := entities.NewIdentity("alice")

	id := mustUpload(t, c, "alice", "cat.mp4", "meow")

	if err := c.Delete(ctx, entities.NewIdentity("bob"), id); !errors.Is(err, ErrNotFoundOrDenied) {
		t.Fatalf("non-owner delete: expected ErrNotFoundOrDenied, got %v", err)
	}

	if err := c.Delete(ctx, alice, id); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if store.Has(id.String() + ".mp4") {
		t.Fatal("bytes still present after delete")
	}
	if _, err := c.Fetch(ctx, alice, id); !errors.Is(err, ErrNotFoundOrDenied) {
		t.Fatalf("fetch after delete: expected ErrNotFoundOrDenied, got %v", err)
	}
}

func TestList_SortedByNameOwnerScopedThumbnailDegrades(t *testing.T) {
	ctx := context.Background()
	c, _, store := newTestCoordinator()
	alice := entities.NewIdentity("alice")

	idB := mustUpload(t, c, "alice", "beta.mp4", "b")
	idA := mustUpload(t, c, "alice", "alpha.mp4", "a")
	mustUpload(t, c, "bob", "aardvark.mp4", "z")

	store.PutThumbnail(idA.String()+".mp4", []byte("jpeg-bytes"))
	// idB has no thumbnail in the backend; its item degrades, the listing
	// still succeeds.

	items, err := c.List(ctx, alice)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Name != "alpha.mp4" || items[1].Name != "beta.mp4" {
		t.Fatalf("not sorted by name: %q, %q", items[0].Name, items[1].Name)
	}
	if items[0].VideoId != idA || items[1].VideoId != idB {
		t.Fatal("listing contains wrong ids")
	}
	if !bytes.Equal(items[0].Thumbnail, []byte("jpeg-bytes")) {
		t.Fatal("missing thumbnail for alpha.mp4")
	}
	if items[1].Thumbnail != nil {
		t.Fatal("expected degraded (nil) thumbnail for beta.mp4")
	}
	if items[0].FetchURL != "http://gateway.test/videos/"+idA.String() {
		t.Fatalf("unexpected fetch url %q", items[0].FetchURL)
	}
}

func TestList_EmptyIsSuccess(t *testing.T) {
	c, _, _ := newTestCoordinator()

	items, err := c.List(context.Background(), entities.NewIdentity("nobody"))
	if err != nil {
		t.Fatalf("empty list failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestConcurrentPublishDelete_NoPartialState(t *testing.T) {
	ctx := context.Background()
	c, repo, store := newTestCoordinator()
	alice := entities.NewIdentity("alice")

	for i := 0; i < 20; i++ {
		id := mustUpload(t, c, "alice", "race.mp4", "rr")

		var wg sync.WaitGroup
		var publishErr, deleteErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			publishErr = c.Publish(ctx, alice, id)
		}()
		go func() {
			defer wg.Done()
			deleteErr = c.Delete(ctx, alice, id)
		}()
		wg.Wait()

		// Every interleaving either publishes then deletes, or deletes first
		// leaving publish denied. Metadata and backend must agree afterwards.
		if deleteErr != nil {
			t.Fatalf("delete by owner failed: %v", deleteErr)
		}
		if publishErr != nil && !errors.Is(publishErr, ErrNotFoundOrDenied) {
			t.Fatalf("publish failed with unexpected error: %v", publishErr)
		}

		video, _ := repo.FindVideoById(ctx, id)
		if video != nil {
			t.Fatal("record survived a successful delete")
		}
		if store.Has(id.String() + ".mp4") {
			t.Fatal("bytes survived a successful delete")
		}
	}
}
