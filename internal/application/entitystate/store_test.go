package entitystate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var errNetwork = errors.New("network")

func waitStarted(t *testing.T, p *fakePort, op string) {
	t.Helper()
	select {
	case got := <-p.started:
		if got != op {
			t.Fatalf("expected port %s call, got %s", op, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for port %s call", op)
	}
}

// TestStore_UpdatePortFailureRollsBack verifies that a rejected update restores the prior collection.
func TestStore_UpdatePortFailureRollsBack(t *testing.T) {
	port := newFakePort()
	port.fail["update"] = errNetwork
	s := newWidgetStore(port, Options{}, widget{ID: "1", Name: "Old"})

	_, err := s.Update(context.Background(), "1", widgetInput{Name: "New"})

	var perr *PortError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PortError, got %v", err)
	}
	if !errors.Is(err, errNetwork) {
		t.Errorf("expected wrapped network error, got %v", err)
	}
	want := []widget{{ID: "1", Name: "Old"}}
	if diff := cmp.Diff(want, s.Entities()); diff != "" {
		t.Errorf("collection not rolled back (-want +got):\n%s", diff)
	}
	if got := s.Status(); got.Phase != PhaseError || got.Message != "network" {
		t.Errorf("status = %+v, want error \"network\"", got)
	}
	if s.HasChange() {
		t.Error("expected no unsaved change after rollback")
	}
}

// TestStore_AddValidationFailure verifies that invalid payloads never reach the port.
func TestStore_AddValidationFailure(t *testing.T) {
	port := newFakePort()
	s := newWidgetStore(port, Options{})

	_, err := s.Add(context.Background(), widgetInput{Name: "x"})

	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !errors.Is(err, errTooShort) {
		t.Errorf("expected errTooShort, got %v", err)
	}
	if s.TotalCount() != 0 {
		t.Errorf("expected empty collection, got %d", s.TotalCount())
	}
	if s.Err() != "too short" {
		t.Errorf("Err() = %q, want %q", s.Err(), "too short")
	}
	if n := port.count("add"); n != 0 {
		t.Errorf("expected 0 port add calls, got %d", n)
	}
}

// TestStore_DeleteSuccess verifies that a confirmed delete leaves the remaining items in order.
func TestStore_DeleteSuccess(t *testing.T) {
	port := newFakePort()
	s := newWidgetStore(port, Options{},
		widget{ID: "1", Name: "one"}, widget{ID: "2", Name: "two"}, widget{ID: "3", Name: "three"})

	if err := s.Delete(context.Background(), "2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := names(s.Entities()); !cmp.Equal(got, []string{"one", "three"}) {
		t.Errorf("expected [one three], got %v", got)
	}
	if !s.IsFulfilled() {
		t.Errorf("expected fulfilled, got %+v", s.Status())
	}
}

// TestStore_DeletePortFailureRestores verifies that a rejected delete puts the entity back in place.
func TestStore_DeletePortFailureRestores(t *testing.T) {
	port := newFakePort()
	port.fail["delete"] = errNetwork
	seed := []widget{{ID: "1", Name: "one"}, {ID: "2", Name: "two"}, {ID: "3", Name: "three"}}
	s := newWidgetStore(port, Options{}, seed...)

	err := s.Delete(context.Background(), "2")
	if !IsPort(err) {
		t.Fatalf("expected PortError, got %v", err)
	}
	if diff := cmp.Diff(seed, s.Entities()); diff != "" {
		t.Errorf("collection not restored (-want +got):\n%s", diff)
	}
}

// TestStore_NotFound verifies that update and delete of unknown ids fail without calling the port.
func TestStore_NotFound(t *testing.T) {
	port := newFakePort()
	s := newWidgetStore(port, Options{}, widget{ID: "1", Name: "one"})

	_, err := s.Update(context.Background(), "missing", widgetInput{Name: "name"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update: expected ErrNotFound, got %v", err)
	}
	if s.Err() != "not found" {
		t.Errorf("Err() = %q, want %q", s.Err(), "not found")
	}

	err = s.Delete(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}

	if port.count("update")+port.count("delete") != 0 {
		t.Error("expected no port calls for unknown ids")
	}
	if s.TotalCount() != 1 {
		t.Errorf("expected collection untouched, got %d items", s.TotalCount())
	}
}

// TestStore_UpdateValidationFailure verifies that an invalid update leaves the entity untouched.
func TestStore_UpdateValidationFailure(t *testing.T) {
	port := newFakePort()
	s := newWidgetStore(port, Options{}, widget{ID: "1", Name: "one"})

	_, err := s.Update(context.Background(), "1", widgetInput{Name: "x"})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	got, _ := s.Get("1")
	if got.Name != "one" {
		t.Errorf("expected name unchanged, got %q", got.Name)
	}
	if port.count("update") != 0 {
		t.Error("expected no port update call")
	}
}

// idChanger rewrites the id on update.
type idChanger struct{ widgetValidator }

func (*idChanger) Update(cur widget, in widgetInput) (widget, error) {
	cur.ID = "other"
	cur.Name = in.Name
	return cur, nil
}

// TestStore_UpdateRejectsIDChange verifies identity is immutable across updates.
func TestStore_UpdateRejectsIDChange(t *testing.T) {
	port := newFakePort()
	s := New[widgetKey]("widgets", Deps[widget, widgetInput]{
		Validator: &idChanger{},
		Port:      port,
		Seed:      []widget{{ID: "1", Name: "one"}},
	}, Options{})

	_, err := s.Update(context.Background(), "1", widgetInput{Name: "new name"})
	if !errors.Is(err, ErrIDChanged) {
		t.Fatalf("expected ErrIDChanged, got %v", err)
	}
	if _, ok := s.Get("1"); !ok {
		t.Error("expected original entity to remain")
	}
}

// TestStore_AddDuplicateID verifies that an id collision is a validation failure.
func TestStore_AddDuplicateID(t *testing.T) {
	port := newFakePort()
	s := New[widgetKey]("widgets", Deps[widget, widgetInput]{
		Validator: &widgetValidator{fixID: "1"},
		Port:      port,
		Seed:      []widget{{ID: "1", Name: "one"}},
	}, Options{})

	_, err := s.Add(context.Background(), widgetInput{Name: "another"})
	if !errors.Is(err, ErrDuplicateID) || !IsValidation(err) {
		t.Fatalf("expected duplicate id validation error, got %v", err)
	}
	if s.TotalCount() != 1 || port.count("add") != 0 {
		t.Errorf("expected no change and no port call, count=%d calls=%d", s.TotalCount(), port.count("add"))
	}
}

// TestStore_AddReplacesPlaceholder verifies the canonical entity from the port replaces the optimistic one.
func TestStore_AddReplacesPlaceholder(t *testing.T) {
	port := newFakePort()
	port.canonical = func(w widget) widget {
		w.Tags = append(w.Tags, "server")
		return w
	}
	s := newWidgetStore(port, Options{})

	saved, err := s.Add(context.Background(), widgetInput{Name: "lamp"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, ok := s.Get(saved.ID)
	if !ok {
		t.Fatalf("expected %s in collection", saved.ID)
	}
	if !cmp.Equal(got.Tags, []string{"server"}) {
		t.Errorf("expected canonical tags, got %v", got.Tags)
	}
	if s.TotalCount() != 1 {
		t.Errorf("expected exactly one entity, got %d", s.TotalCount())
	}
}

// TestStore_AddPortFailurePolicy verifies both add-failure policies.
func TestStore_AddPortFailurePolicy(t *testing.T) {
	tests := []struct {
		name      string
		rollback  bool
		wantCount int
	}{
		{name: "optimistic entity kept", rollback: false, wantCount: 2},
		{name: "rolled back", rollback: true, wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := newFakePort()
			port.fail["add"] = errNetwork
			s := newWidgetStore(port, Options{RollbackOnAddFailure: tt.rollback}, widget{ID: "seed", Name: "seed"})

			_, err := s.Add(context.Background(), widgetInput{Name: "lamp"})
			if !IsPort(err) {
				t.Fatalf("expected PortError, got %v", err)
			}
			if got := s.TotalCount(); got != tt.wantCount {
				t.Errorf("TotalCount = %d, want %d", got, tt.wantCount)
			}
			if s.Err() != "network" {
				t.Errorf("Err() = %q, want network", s.Err())
			}
		})
	}
}

// TestStore_OptimisticChangeVisibleWhilePending verifies the local change is applied before the port answers.
func TestStore_OptimisticChangeVisibleWhilePending(t *testing.T) {
	port := newFakePort()
	release := port.hold()
	s := newWidgetStore(port, Options{}, widget{ID: "1", Name: "Old"})

	done := make(chan error, 1)
	go func() {
		_, err := s.Update(context.Background(), "1", widgetInput{Name: "New"})
		done <- err
	}()
	waitStarted(t, port, "update")

	if !s.IsPending() {
		t.Errorf("expected pending, got %+v", s.Status())
	}
	if got, _ := s.Get("1"); got.Name != "New" {
		t.Errorf("expected optimistic name New, got %q", got.Name)
	}
	if !s.HasChange() {
		t.Error("expected unsaved change while pending")
	}

	release <- errNetwork
	if err := <-done; !IsPort(err) {
		t.Fatalf("expected PortError, got %v", err)
	}
	if got, _ := s.Get("1"); got.Name != "Old" {
		t.Errorf("expected rollback to Old, got %q", got.Name)
	}
}

// TestStore_StaleCompletionDiscarded verifies that a late failure from an older request
// keeps the newer status and reverts only the entity it wrote.
func TestStore_StaleCompletionDiscarded(t *testing.T) {
	port := newFakePort()
	release := port.hold()
	s := newWidgetStore(port, Options{}, widget{ID: "1", Name: "one"}, widget{ID: "2", Name: "two"})

	done := make(chan error, 1)
	go func() {
		_, err := s.Update(context.Background(), "1", widgetInput{Name: "first"})
		done <- err
	}()
	waitStarted(t, port, "update")

	if _, err := s.Update(context.Background(), "2", widgetInput{Name: "second"}); err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if !s.IsFulfilled() {
		t.Fatalf("expected fulfilled after second update, got %+v", s.Status())
	}

	release <- errNetwork
	if err := <-done; !IsPort(err) {
		t.Fatalf("expected stale call to still report its PortError, got %v", err)
	}

	if !s.IsFulfilled() {
		t.Errorf("stale completion changed status to %+v", s.Status())
	}
	if got := names(s.Entities()); !cmp.Equal(got, []string{"one", "second"}) {
		t.Errorf("expected [one second], got %v", got)
	}
}

// TestStore_StaleFailureKeepsNewerWrite verifies that a stale failure leaves an entity
// alone once a newer request has replaced the value it wrote.
func TestStore_StaleFailureKeepsNewerWrite(t *testing.T) {
	port := newFakePort()
	release := port.hold()
	s := newWidgetStore(port, Options{}, widget{ID: "1", Name: "one"})

	done := make(chan error, 1)
	go func() {
		_, err := s.Update(context.Background(), "1", widgetInput{Name: "first"})
		done <- err
	}()
	waitStarted(t, port, "update")

	if _, err := s.Update(context.Background(), "1", widgetInput{Name: "newer"}); err != nil {
		t.Fatalf("second Update: %v", err)
	}
	release <- errNetwork
	<-done

	if got := names(s.Entities()); !cmp.Equal(got, []string{"newer"}) {
		t.Errorf("expected [newer], got %v", got)
	}
	if !s.IsFulfilled() {
		t.Errorf("expected fulfilled, got %+v", s.Status())
	}
}

// TestStore_StaleDeleteFailureReinserts verifies a stale failed delete puts the entity back in place.
func TestStore_StaleDeleteFailureReinserts(t *testing.T) {
	port := newFakePort()
	release := port.hold()
	s := newWidgetStore(port, Options{},
		widget{ID: "1", Name: "one"}, widget{ID: "2", Name: "two"}, widget{ID: "3", Name: "three"})

	done := make(chan error, 1)
	go func() { done <- s.Delete(context.Background(), "2") }()
	waitStarted(t, port, "delete")

	if _, err := s.Update(context.Background(), "3", widgetInput{Name: "third"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	release <- errNetwork
	if err := <-done; !IsPort(err) {
		t.Fatalf("expected PortError, got %v", err)
	}

	if got := names(s.Entities()); !cmp.Equal(got, []string{"one", "two", "third"}) {
		t.Errorf("expected [one two third], got %v", got)
	}
	if !s.IsFulfilled() {
		t.Errorf("expected fulfilled, got %+v", s.Status())
	}
}

// TestStore_Reject verifies a refused intent lands in the status without touching the collection.
func TestStore_Reject(t *testing.T) {
	port := newFakePort()
	s := newWidgetStore(port, Options{}, widget{ID: "1", Name: "one"})
	if _, err := s.Update(context.Background(), "1", widgetInput{Name: "uno"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	refused := errors.New("still referenced")
	if err := s.Reject("delete", "1", refused); !errors.Is(err, refused) {
		t.Fatalf("Reject returned %v", err)
	}

	want := RequestStatus{Phase: PhaseError, Message: "still referenced"}
	if diff := cmp.Diff(want, s.Status()); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
	if got := names(s.Entities()); !cmp.Equal(got, []string{"uno"}) {
		t.Errorf("collection changed: %v", got)
	}
	if port.count("delete") != 0 {
		t.Errorf("port called %d times", port.count("delete"))
	}
}

// TestStore_LoadAll verifies loading, failure and duplicate-id rejection.
func TestStore_LoadAll(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		port := newFakePort(widget{ID: "1", Name: "one"}, widget{ID: "2", Name: "two"})
		s := newWidgetStore(port, Options{})
		if err := s.LoadAll(context.Background()); err != nil {
			t.Fatalf("LoadAll: %v", err)
		}
		if s.TotalCount() != 2 || !s.IsFulfilled() {
			t.Errorf("expected 2 items fulfilled, got %d %+v", s.TotalCount(), s.Status())
		}
	})

	t.Run("port failure keeps collection", func(t *testing.T) {
		port := newFakePort()
		port.fail["get_all"] = errNetwork
		s := newWidgetStore(port, Options{}, widget{ID: "seed", Name: "seed"})
		if err := s.LoadAll(context.Background()); !IsPort(err) {
			t.Fatalf("expected PortError, got %v", err)
		}
		if s.TotalCount() != 1 {
			t.Errorf("expected seed to survive, got %d", s.TotalCount())
		}
	})

	t.Run("duplicate ids rejected", func(t *testing.T) {
		port := newFakePort(widget{ID: "1", Name: "one"}, widget{ID: "1", Name: "again"})
		s := newWidgetStore(port, Options{})
		err := s.LoadAll(context.Background())
		if !errors.Is(err, ErrDuplicateID) {
			t.Fatalf("expected ErrDuplicateID, got %v", err)
		}
		if s.TotalCount() != 0 {
			t.Errorf("expected empty collection, got %d", s.TotalCount())
		}
	})
}

// TestStore_FilterScenario verifies filtered views and counters over a store.
func TestStore_FilterScenario(t *testing.T) {
	s := newWidgetStore(newFakePort(), Options{},
		widget{ID: "1", Name: "A"},
		widget{ID: "2", Name: "B", Tags: []string{"blue"}},
		widget{ID: "3", Name: "C", Tags: []string{"blue"}})

	s.SetFilter(keyTag, hasTag("blue"))
	if got := names(s.Filtered()); !cmp.Equal(got, []string{"B", "C"}) {
		t.Errorf("expected [B C], got %v", got)
	}
	if s.FilteredCount() != 2 || s.ActiveFiltersCount() != 1 || !s.HasActiveFilters() {
		t.Errorf("counters: filtered=%d active=%d", s.FilteredCount(), s.ActiveFiltersCount())
	}

	s.RemoveFilter(keyTag)
	if s.FilteredCount() != 3 || s.HasActiveFilters() {
		t.Errorf("expected all items after RemoveFilter, got %d", s.FilteredCount())
	}

	s.SetFilter(keyTag, hasTag("blue"))
	s.SetFilter(keySearch, func(w widget) bool { return w.Name == "C" })
	v := s.View()
	if v.FilteredCount != 1 || v.TotalCount != 3 || v.ActiveFilters != 2 {
		t.Errorf("View = %+v", v)
	}

	s.ClearFilters()
	if s.HasActiveFilters() {
		t.Error("expected no filters after ClearFilters")
	}
}

// TestStore_ReadsAreCopies verifies callers cannot mutate the collection through returned values.
func TestStore_ReadsAreCopies(t *testing.T) {
	s := newWidgetStore(newFakePort(), Options{}, widget{ID: "1", Name: "one", Tags: []string{"a"}})

	items := s.Entities()
	items[0].Tags[0] = "mutated"
	items[0].Name = "mutated"

	got, _ := s.Get("1")
	if got.Name != "one" || got.Tags[0] != "a" {
		t.Errorf("store mutated through returned slice: %+v", got)
	}
}

// TestStore_RecordsPortCalls verifies every port call is reported to the recorder.
func TestStore_RecordsPortCalls(t *testing.T) {
	port := newFakePort()
	port.fail["delete"] = errNetwork
	rec := &recorderSpy{}
	s := New[widgetKey]("widgets", Deps[widget, widgetInput]{
		Validator: &widgetValidator{},
		Port:      port,
		Recorder:  rec,
	}, Options{})

	ctx := context.Background()
	_ = s.LoadAll(ctx)
	w, _ := s.Add(ctx, widgetInput{Name: "lamp"})
	_, _ = s.Update(ctx, w.ID, widgetInput{Name: "lamp 2"})
	_ = s.Delete(ctx, w.ID)
	_, _ = s.Add(ctx, widgetInput{Name: "x"}) // rejected before the port

	want := []string{"widgets.get_all", "widgets.add", "widgets.update", "widgets.delete"}
	if diff := cmp.Diff(want, rec.ops); diff != "" {
		t.Errorf("recorded ops mismatch (-want +got):\n%s", diff)
	}
	if rec.errs != 1 {
		t.Errorf("expected 1 recorded error, got %d", rec.errs)
	}
}
