package cells_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/teamspace/internal/app/cells"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDocuments_LoadForActiveWorkspace(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	repos.Documents.Documents = []models.Document{
		{ID: primitive.NewObjectID(), Title: "Roadmap"},
		{ID: primitive.NewObjectID(), Title: "Notes"},
	}

	openWorkspace(t, engine, provider, repos)
	waitFor(t, func() bool { return len(engine.Documents.State().Items) == 2 })
}

func TestDocuments_CreateStampsAuthor(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	ws := openWorkspace(t, engine, provider, repos)

	created, err := engine.Documents.CreateDocument(context.Background(), models.Document{
		WorkspaceID: ws.ID,
		Title:       "Kickoff",
		Body:        "agenda",
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if created.CreatedBy.IsZero() {
		t.Error("document must be stamped with its author")
	}
	if created.ID.IsZero() {
		t.Error("document must carry its persisted id")
	}

	found := false
	for _, d := range engine.Documents.State().Items {
		if d.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Error("created document must join the local list")
	}
}

func TestDocuments_CreateRequiresAuthAndTitle(t *testing.T) {
	engine, provider, repos := newTestEngine(t)

	_, err := engine.Documents.CreateDocument(context.Background(), models.Document{Title: "X"})
	if !errors.Is(err, cells.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}

	ws := openWorkspace(t, engine, provider, repos)
	_, err = engine.Documents.CreateDocument(context.Background(), models.Document{WorkspaceID: ws.ID})
	var verr *cells.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for empty title, got %v", err)
	}
	if repos.Documents.Calls.Create != 0 {
		t.Error("rejected creates must not reach the repository")
	}
}

func TestDocuments_DeleteRemovesLocally(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	doc := models.Document{ID: primitive.NewObjectID(), Title: "Old"}
	repos.Documents.Documents = []models.Document{doc}

	openWorkspace(t, engine, provider, repos)
	waitFor(t, func() bool { return len(engine.Documents.State().Items) == 1 })

	if err := engine.Documents.DeleteDocument(context.Background(), doc); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if got := len(engine.Documents.State().Items); got != 0 {
		t.Errorf("deleted document must leave the local list, %d left", got)
	}
}

func TestDocuments_DeleteFailureSurfacesError(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	doc := models.Document{ID: primitive.NewObjectID(), Title: "Locked"}
	repos.Documents.Documents = []models.Document{doc}
	repos.Documents.DeleteErr = errors.New("db down")

	openWorkspace(t, engine, provider, repos)
	waitFor(t, func() bool { return len(engine.Documents.State().Items) == 1 })

	if err := engine.Documents.DeleteDocument(context.Background(), doc); err == nil {
		t.Fatal("expected the delete failure to surface")
	}
	if len(engine.Documents.State().Items) != 1 {
		t.Error("a failed delete must leave the local list untouched")
	}
	if engine.Documents.State().Error == "" {
		t.Error("the failure must be visible in the error field")
	}
}

func TestDocuments_WatchReplacesWholesale(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	repos.Documents.Documents = []models.Document{
		{ID: primitive.NewObjectID(), Title: "Only"},
	}

	openWorkspace(t, engine, provider, repos)
	waitFor(t, func() bool { return repos.Documents.Calls.Watch == 1 })

	repos.Documents.Push([]models.Document{
		{ID: primitive.NewObjectID(), Title: "A"},
		{ID: primitive.NewObjectID(), Title: "B"},
	})
	waitFor(t, func() bool { return len(engine.Documents.State().Items) == 2 })
}
